package diagnostics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scopekit/dag"
	"github.com/kbukum/scopekit/di"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
	"github.com/kbukum/scopekit/version"
)

// Option configures New.
type Option func(*options)

type options struct {
	logger *logger.Logger
	prefix string
}

// WithLogger sets the logger used by the recovery middleware.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPrefix mounts the routes under prefix instead of "/di".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// New returns a gin engine serving the diagnostics routes for c.
func New(c *di.Container, opts ...Option) *gin.Engine {
	o := options{logger: logger.Nop(), prefix: "/di"}
	for _, opt := range opts {
		opt(&o)
	}
	r := gin.New()
	r.Use(requestID(), recovery(o.logger.WithComponent("diagnostics")))
	Register(r.Group(o.prefix), c)
	return r
}

// Register mounts the diagnostics routes on router.
//
//	GET /registrations           every descriptor in registration order
//	GET /registrations/*key      the descriptors of one key, which may contain "/"
//	GET /graph                   nodes, edges and construction levels
//	GET /validation              the validation report, 409 when it has errors
//	GET /resolutions?key=&failed the resolution log
//	GET /version                 build information
func Register(router gin.IRouter, c *di.Container) {
	h := &handler{c: c}
	router.GET("/registrations", h.registrations)
	router.GET("/registrations/*key", h.registration)
	router.GET("/graph", h.graph)
	router.GET("/validation", h.validation)
	router.GET("/resolutions", h.resolutions)
	router.GET("/version", func(ctx *gin.Context) { RespondOK(ctx, version.Get()) })
}

type handler struct {
	c *di.Container
}

func (h *handler) registrations(ctx *gin.Context) {
	descs := h.c.Descriptors()
	out := make([]di.DescriptorInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Info())
	}
	RespondList(ctx, out, len(out))
}

func (h *handler) registration(ctx *gin.Context) {
	key := di.Key(strings.TrimPrefix(ctx.Param("key"), "/"))
	if key == "" {
		h.registrations(ctx)
		return
	}
	descs := h.c.Lookup(key)
	if len(descs) == 0 {
		RespondWithError(ctx, apperrors.NotRegistered(string(key)))
		return
	}
	out := make([]di.DescriptorInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Info())
	}
	RespondList(ctx, out, len(out))
}

// GraphView is the JSON shape of the dependency graph.
type GraphView struct {
	Nodes []di.DescriptorInfo `json:"nodes"`
	Edges []dag.Edge          `json:"edges"`
	// Levels is empty when the graph has a cycle.
	Levels [][]string `json:"levels"`
	Roots  []string   `json:"roots"`
}

func (h *handler) graph(ctx *gin.Context) {
	g := h.c.Graph()
	view := GraphView{
		Nodes:  make([]di.DescriptorInfo, 0, g.Len()),
		Edges:  g.Edges(),
		Levels: [][]string{},
		Roots:  g.Roots(),
	}
	for _, d := range h.c.Descriptors() {
		view.Nodes = append(view.Nodes, d.Info())
	}
	if view.Edges == nil {
		view.Edges = []dag.Edge{}
	}
	if view.Roots == nil {
		view.Roots = []string{}
	}
	if levels, err := dag.BuildLevels(g); err == nil {
		view.Levels = levels
	}
	RespondOK(ctx, view)
}

func (h *handler) validation(ctx *gin.Context) {
	report := h.c.Validate()
	status := http.StatusOK
	if !report.OK() {
		status = http.StatusConflict
	}
	ctx.JSON(status, DataResponse{Data: report})
}

func (h *handler) resolutions(ctx *gin.Context) {
	log := h.c.Log()
	if log == nil {
		ctx.JSON(http.StatusNotFound, apperrors.ErrorResponse{Error: apperrors.ErrorBody{
			Code:    codeLogDisabled,
			Message: "the container was built without a resolution log",
		}})
		return
	}

	var records []di.ResolutionRecord
	switch key := ctx.Query("key"); {
	case key != "":
		records = log.ForKey(di.Key(key))
	default:
		records = log.Records()
	}
	if raw := ctx.Query("failed"); raw != "" {
		failed, err := strconv.ParseBool(raw)
		if err != nil {
			RespondWithError(ctx, apperrors.InvalidConfig("failed must be a boolean"))
			return
		}
		records = filterOutcome(records, !failed)
	}
	if records == nil {
		records = []di.ResolutionRecord{}
	}
	RespondList(ctx, records, len(records))
}

func filterOutcome(records []di.ResolutionRecord, success bool) []di.ResolutionRecord {
	out := records[:0:0]
	for _, r := range records {
		if r.Success == success {
			out = append(out, r)
		}
	}
	return out
}
