// Package safety decides whether an AI-generated reply is safe to show to a
// child.
//
// An Orchestrator runs the toxicity, emotional impact, educational value and
// conversation analyzers concurrently over one reply and reduces their
// results to a ContentAnalysisResult under a fixed policy:
//
//   - IsSafe is toxicity < high_risk_threshold, forced false by a critical
//     behavioral concern or a privacy risk.
//   - The risk level comes from banding the toxicity score. A forced-unsafe
//     reply is at least HIGH_RISK; an unhealthy conversation is at least
//     MEDIUM_RISK.
//   - HIGH_RISK and CRITICAL replies require parent notification when
//     notify_parents_on_risk is set.
//
// Analysis never fails from the caller's point of view. Invalid input or a
// failing analyzer yields a fail-safe result that blocks the reply, with the
// reason in Metadata. Bias checks run through the same orchestrator, and
// batches keep input order with bounded concurrency.
//
// Basic usage:
//
//	o := safety.New(cfg.Safety, rules.Default(), safety.Deps{Logger: logger})
//	result := o.AnalyzeContent(ctx, reply, model.ConversationContext{ChildAge: 6})
//	if !result.IsSafe {
//		// substitute a safe reply
//	}
package safety
