// Package guardian assembles a running safety engine from configuration.
//
// A Service builds the logger, metrics collector and tracer, loads the
// pattern packs, negotiates the bias scorer and opens the audit trail. The
// analysis pipeline (rule store plus orchestrator) is immutable and held
// behind an atomic pointer: when pattern packs change on disk a new
// pipeline is built and swapped in, and analyses already running finish on
// the old one.
//
//	svc, err := guardian.New(ctx, cfg, guardian.Options{})
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//	go svc.Run(ctx)
//
//	result := svc.AnalyzeContent(ctx, reply, model.ConversationContext{ChildAge: 7})
package guardian
