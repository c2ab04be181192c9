package di

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/scopekit/config"
	"github.com/kbukum/scopekit/dag"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

// Option configures a Builder and the Container it builds.
type Option func(*options)

type options struct {
	allowOverrides  bool
	validateOnBuild bool
	policy          dag.Policy
	recordLog       bool
	warmOnBuild     bool
	maxParallelWarm int
	disposeTimeout  time.Duration
	log             *logger.Logger
	observers       []Observer
	newScopeID      func() string
	configErr       error
}

func defaultOptions() options {
	return options{
		policy:         dag.PolicyStrict,
		recordLog:      true,
		disposeTimeout: config.DefaultDisposeTimeout,
		newScopeID:     uuid.NewString,
	}
}

// WithAllowOverrides lets a later single-valued registration replace an
// earlier one instead of failing Build.
func WithAllowOverrides(allow bool) Option {
	return func(o *options) { o.allowOverrides = allow }
}

// WithValidateOnBuild makes Build fail when the validation report has errors.
func WithValidateOnBuild(validate bool) Option {
	return func(o *options) { o.validateOnBuild = validate }
}

// WithCaptivePolicy selects how captive dependencies are detected.
func WithCaptivePolicy(p dag.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithResolutionLog enables or disables the in-memory resolution log.
func WithResolutionLog(enabled bool) Option {
	return func(o *options) { o.recordLog = enabled }
}

// WithWarmOnBuild constructs every singleton at the end of Build.
func WithWarmOnBuild(warm bool) Option {
	return func(o *options) { o.warmOnBuild = warm }
}

// WithMaxParallelWarm bounds concurrent construction during Warm (0 = unlimited).
func WithMaxParallelWarm(n int) Option {
	return func(o *options) { o.maxParallelWarm = n }
}

// WithDisposeTimeout bounds Dispose when the caller's context has no deadline.
func WithDisposeTimeout(d time.Duration) Option {
	return func(o *options) { o.disposeTimeout = d }
}

// WithLogger sets the container logger. Defaults to logger.Get("di").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver attaches an observer notified of every resolution.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithScopeIDGenerator replaces the random UUID scope IDs.
func WithScopeIDGenerator(fn func() string) Option {
	return func(o *options) { o.newScopeID = fn }
}

// WithConfig applies a ContainerConfig. An invalid config makes Build fail
// with an INVALID_CONFIG error.
func WithConfig(cfg config.ContainerConfig) Option {
	return func(o *options) {
		policy, err := dag.ParsePolicy(cfg.CaptivePolicy)
		if err != nil {
			o.configErr = apperrors.InvalidConfig(err.Error()).WithDetail("field", "captive_policy")
			return
		}
		o.allowOverrides = cfg.AllowOverrides
		o.validateOnBuild = cfg.ValidateOnBuild
		o.policy = policy
		o.recordLog = !cfg.DisableResolutionLog
		o.warmOnBuild = cfg.WarmOnBuild
		o.maxParallelWarm = cfg.MaxParallelWarm
		if cfg.DisposeTimeout > 0 {
			o.disposeTimeout = cfg.DisposeTimeout
		}
	}
}
