package bootstrap

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/scopekit/di"
)

// ServiceInfo is one registration as shown in the startup summary.
type ServiceInfo struct {
	Key          string
	Lifetime     string
	Dependencies []string
	Prebuilt     bool
}

// Summary collects and prints what the application started with.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	notes           []string
}

// NewSummary creates a summary for the named service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// StartupDuration returns the recorded startup time.
func (s *Summary) StartupDuration() time.Duration {
	return s.startupDuration
}

// Note adds a free-form line printed at the end of the summary.
func (s *Summary) Note(format string, args ...any) {
	s.notes = append(s.notes, fmt.Sprintf(format, args...))
}

// Services lists the container's registrations in registration order.
func Services(c *di.Container) []ServiceInfo {
	if c == nil {
		return nil
	}
	descs := c.Descriptors()
	out := make([]ServiceInfo, 0, len(descs))
	for _, d := range descs {
		info := d.Info()
		deps := make([]string, 0, len(info.Dependencies))
		for _, k := range info.Dependencies {
			deps = append(deps, string(k))
		}
		out = append(out, ServiceInfo{
			Key:          string(info.Key),
			Lifetime:     info.Lifetime.String(),
			Dependencies: deps,
			Prebuilt:     info.Prebuilt,
		})
	}
	return out
}

// Render writes the summary for c and its validation report to w.
func (s *Summary) Render(w io.Writer, c *di.Container, report *di.ValidationReport) {
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	services := Services(c)
	counts := map[string]int{}
	for _, svc := range services {
		counts[svc.Lifetime]++
	}

	fmt.Fprintf(w, "📦 Services (%d)\n", len(services))
	if len(services) == 0 {
		fmt.Fprintf(w, "   └── No services registered\n")
	}
	for i, svc := range services {
		last := i == len(services)-1
		prefix := "├──"
		if last {
			prefix = "└──"
		}
		fmt.Fprintf(w, "   %s %s %s [%s]\n", prefix, lifetimeIcon(svc), svc.Key, svc.Lifetime)
		for j, dep := range svc.Dependencies {
			depPrefix := "│   ├──"
			switch {
			case last && j == len(svc.Dependencies)-1:
				depPrefix = "    └──"
			case last:
				depPrefix = "    ├──"
			case j == len(svc.Dependencies)-1:
				depPrefix = "│   └──"
			}
			fmt.Fprintf(w, "   %s 🔗 %s\n", depPrefix, dep)
		}
	}
	fmt.Fprintf(w, "\n   singleton: %d, scoped: %d, transient: %d\n",
		counts[di.Singleton.String()], counts[di.Scoped.String()], counts[di.Transient.String()])

	if report != nil {
		fmt.Fprintf(w, "\n")
		if report.OK() {
			fmt.Fprintf(w, "✅ Container valid\n")
		} else {
			fmt.Fprintf(w, "❌ Container has %d problem(s)\n", len(report.Errors()))
		}
		if len(report.UnusedServices) > 0 {
			fmt.Fprintf(w, "⚠️  Unused: %s\n", strings.Join(report.UnusedServices, ", "))
		}
	}

	for _, n := range s.notes {
		fmt.Fprintf(w, "ℹ️  %s\n", n)
	}
	fmt.Fprintf(w, "\n")
}

func lifetimeIcon(svc ServiceInfo) string {
	if svc.Prebuilt {
		return "📌"
	}
	switch svc.Lifetime {
	case di.Singleton.String():
		return "⚙️"
	case di.Scoped.String():
		return "🔁"
	default:
		return "✨"
	}
}
