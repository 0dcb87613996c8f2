package guardian

import (
	"context"
	"errors"
	"fmt"

	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/safety"
	"aiteddy-hq/guardian/pkg/safety/bias"
	"aiteddy-hq/guardian/pkg/safety/model"
	"aiteddy-hq/guardian/pkg/telemetry/health"
)

// Readiness check names.
const (
	CheckConfig    = "config"
	CheckRules     = "rules"
	CheckSelfTest  = "selftest"
	CheckEmbedding = "embedding"
	CheckAudit     = "audit"
)

// selfTestText must always be blocked. If it is not, the rule tables or
// the policy are broken and no reply should be trusted.
const selfTestText = "You're stupid and ugly! I hate you!"

var errSelfTestPassedUnsafe = errors.New("known-unsafe reply was not blocked")

func (s *Service) registerChecks() {
	s.health.RegisterCheck(CheckConfig, func(context.Context) error {
		return config.Validate(s.cfg)
	})
	s.health.RegisterCheck(CheckRules, func(context.Context) error {
		p := s.current.Load()
		if p == nil || len(p.rules.Categories()) == 0 {
			return errors.New("no pattern tables loaded")
		}
		return nil
	})
	s.health.RegisterCheck(CheckSelfTest, s.selfTest)

	if s.embedder != nil {
		s.health.RegisterOptionalCheck(CheckEmbedding, func(ctx context.Context) error {
			if _, err := s.embedder.Embed(ctx, []string{"health check"}); err != nil {
				return err
			}
			if m := s.BiasMethod(); m != bias.MethodEmbedding {
				return fmt.Errorf("endpoint reachable but scorer is %q until the next reload", m)
			}
			return nil
		})
	}
	if s.store != nil {
		s.health.RegisterOptionalCheck(CheckAudit, s.store.Ping)
	}
}

func (s *Service) selfTest(ctx context.Context) error {
	p := s.current.Load()
	if p == nil {
		return errors.New("no pipeline loaded")
	}
	r := p.canary.AnalyzeContent(ctx, selfTestText, model.ConversationContext{ChildAge: 6})
	if r.IsSafe {
		return errSelfTestPassedUnsafe
	}
	if failure := r.Metadata[safety.MetaFailure]; failure != "" {
		return fmt.Errorf("self-test analysis failed: %s", failure)
	}
	return nil
}

// Health runs every readiness check. Required checks (config, rules and the
// self-test) make the service unhealthy; optional ones (embedding endpoint,
// audit storage) only degrade it.
func (s *Service) Health(ctx context.Context) health.Report {
	return s.health.CheckReadiness(ctx)
}
