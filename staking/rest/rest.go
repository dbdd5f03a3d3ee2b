// Package rest implements a read-only HTTP gateway to the staking platform.
package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cryptogopniks/GopStake/staking/api"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopstake_rest_requests",
			Help: "Number of REST gateway requests.",
		},
		[]string{"route", "code"},
	)
	requestLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "gopstake_rest_latency",
			Help: "REST gateway request latency (seconds).",
		},
		[]string{"route"},
	)
)

// Options are the gateway options.
type Options struct {
	// AllowedOrigins is a comma separated list of CORS origins.
	AllowedOrigins string

	// Registerer receives the gateway metrics. Nil disables metrics.
	Registerer prometheus.Registerer
}

// Gateway serves staking queries over HTTP.
type Gateway struct {
	backend api.Backend
}

// NewGateway creates a new gateway over the given backend.
func NewGateway(backend api.Backend) *Gateway {
	return &Gateway{backend: backend}
}

// Mount registers the gateway routes under the given path prefix.
func (g *Gateway) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/config").
		Methods(http.MethodGet).
		Name("GET /config").
		HandlerFunc(WrapHandlerFunc(g.handleGetConfig))
	sub.Path("/funds").
		Methods(http.MethodGet).
		Name("GET /funds").
		HandlerFunc(WrapHandlerFunc(g.handleGetFunds))
	sub.Path("/stakers").
		Methods(http.MethodGet).
		Name("GET /stakers").
		HandlerFunc(WrapHandlerFunc(g.handleGetStakers))
	sub.Path("/stakers/{address}/rewards").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/rewards").
		HandlerFunc(WrapHandlerFunc(g.handleGetRewards))
	sub.Path("/accounts/{address}/balances").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}/balances").
		HandlerFunc(WrapHandlerFunc(g.handleGetAssociatedBalances))
	sub.Path("/proposals").
		Methods(http.MethodGet).
		Name("GET /proposals").
		HandlerFunc(WrapHandlerFunc(g.handleGetProposals))
	sub.Path("/collections").
		Methods(http.MethodGet).
		Name("GET /collections").
		HandlerFunc(WrapHandlerFunc(g.handleGetCollections))
	sub.Path("/balances").
		Methods(http.MethodGet).
		Name("GET /balances").
		HandlerFunc(WrapHandlerFunc(g.handleGetCollectionsBalances))
	sub.Path("/genesis").
		Methods(http.MethodGet).
		Name("GET /genesis").
		HandlerFunc(WrapHandlerFunc(g.handleGetGenesis))
}

func addressesQuery(req *http.Request) (*api.AddressesQuery, error) {
	var q api.AddressesQuery
	for _, raw := range req.URL.Query()["address"] {
		addr := api.Address(raw)
		if !addr.IsValid() {
			return nil, BadRequest(errors.Errorf("malformed address '%s'", raw))
		}
		q.Addresses = append(q.Addresses, addr)
	}
	return &q, nil
}

func pathAddress(req *http.Request) (api.Address, error) {
	addr := api.Address(mux.Vars(req)["address"])
	if !addr.IsValid() {
		return "", BadRequest(errors.New("malformed address"))
	}
	return addr, nil
}

func (g *Gateway) handleGetConfig(w http.ResponseWriter, req *http.Request) error {
	cfg, err := g.backend.Config(req.Context())
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, cfg)
}

func (g *Gateway) handleGetFunds(w http.ResponseWriter, req *http.Request) error {
	funds, err := g.backend.Funds(req.Context())
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, funds)
}

func (g *Gateway) handleGetStakers(w http.ResponseWriter, req *http.Request) error {
	q, err := addressesQuery(req)
	if err != nil {
		return err
	}
	stakers, err := g.backend.Stakers(req.Context(), q)
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, stakers)
}

func (g *Gateway) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	addr, err := pathAddress(req)
	if err != nil {
		return err
	}
	q := api.RewardsQuery{Address: addr}

	if raw := req.URL.Query().Get("collection"); raw != "" {
		coll := api.Address(raw)
		if !coll.IsValid() {
			return BadRequest(errors.New("malformed collection"))
		}
		q.Collection = &coll
	}
	if raw := req.URL.Query().Get("now"); raw != "" {
		now, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil {
			return BadRequest(errors.WithMessage(perr, "now"))
		}
		q.Now = api.Timestamp(now)
	}

	rsp, err := g.backend.StakingRewards(req.Context(), &q)
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, rsp)
}

func (g *Gateway) handleGetAssociatedBalances(w http.ResponseWriter, req *http.Request) error {
	addr, err := pathAddress(req)
	if err != nil {
		return err
	}
	rsp, err := g.backend.AssociatedBalances(req.Context(), addr)
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, rsp)
}

func (g *Gateway) handleGetProposals(w http.ResponseWriter, req *http.Request) error {
	var q api.ProposalsQuery
	if raw := req.URL.Query().Get("last"); raw != "" {
		last, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return BadRequest(errors.WithMessage(err, "last"))
		}
		q.LastAmount = &last
	}

	proposals, err := g.backend.Proposals(req.Context(), &q)
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, proposals)
}

func (g *Gateway) handleGetCollections(w http.ResponseWriter, req *http.Request) error {
	q, err := addressesQuery(req)
	if err != nil {
		return err
	}
	collections, err := g.backend.Collections(req.Context(), q)
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, collections)
}

func (g *Gateway) handleGetCollectionsBalances(w http.ResponseWriter, req *http.Request) error {
	q, err := addressesQuery(req)
	if err != nil {
		return err
	}
	balances, err := g.backend.CollectionsBalances(req.Context(), q)
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, balances)
}

func (g *Gateway) handleGetGenesis(w http.ResponseWriter, req *http.Request) error {
	genesis, err := g.backend.StateToGenesis(req.Context())
	if err != nil {
		return fromBackend(err)
	}
	return WriteJSON(w, genesis)
}

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		mrw := &metricsResponseWriter{w, http.StatusOK}
		next.ServeHTTP(mrw, r)

		route := "unknown"
		if cr := mux.CurrentRoute(r); cr != nil && cr.GetName() != "" {
			route = cr.GetName()
		}
		requestCount.With(prometheus.Labels{"route": route, "code": strconv.Itoa(mrw.statusCode)}).Inc()
		requestLatency.With(prometheus.Labels{"route": route}).Observe(time.Since(start).Seconds())
	})
}

// New returns the HTTP handler of a gateway over the given backend.
func New(backend api.Backend, opts Options) (http.Handler, error) {
	router := mux.NewRouter()
	NewGateway(backend).Mount(router, "/staking")

	if opts.Registerer != nil {
		for _, c := range []prometheus.Collector{requestCount, requestLatency} {
			if err := opts.Registerer.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					return nil, err
				}
			}
		}
		router.Use(metricsMiddleware)
	}

	var origins []string
	for _, o := range strings.Split(opts.AllowedOrigins, ",") {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			origins = append(origins, o)
		}
	}

	handler := handlers.CompressHandler(router)
	if len(origins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{http.MethodGet}),
		)(handler)
	}
	return handler, nil
}
