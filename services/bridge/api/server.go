package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/engine"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/scheduler"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("api")

const resetTimeout = 30 * time.Second

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	units          UnitsProvider
	resetter       BatchResetter
	trigger        JobTrigger
	serviceKey     string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
	mutActions     sync.Mutex
	ctx            context.Context
	cancel         func()
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKey     string
	ListenAddress  string
	Units          UnitsProvider
	Resetter       BatchResetter
	Trigger        JobTrigger
	GeneralHandler func(http.Handler) http.Handler
}

// UnitResponse is the tuple exposed for every unit
type UnitResponse struct {
	common.UnitDescriptor
	common.UnitState
}

// ResetBatchRequest is the body of the reset_batch action
type ResetBatchRequest struct {
	BatchID string `json:"batch_id"`
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Units) {
		return nil, errors.New("nil units provider")
	}
	if check.IfNil(args.Resetter) {
		return nil, errors.New("nil batch resetter")
	}
	if check.IfNil(args.Trigger) {
		return nil, errors.New("nil job trigger")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		units:          args.Units,
		resetter:       args.Resetter,
		trigger:        args.Trigger,
		serviceKey:     args.ServiceKey,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")
	if s.serviceKey != "" {
		api.Use(s.authAPIKey())
	}

	api.GET("/units", s.handleGetUnits)
	api.GET("/units/:id", s.handleGetUnit)
	api.POST("/services/reset_batch", s.handleResetBatch)
	api.POST("/refresh/:job", s.handleRefresh)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server and waits for the pending actions
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.mutActions.Lock()
	s.cancel()
	s.mutActions.Unlock()
	s.wg.Wait()

	return err
}

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func toResponse(unit engine.Unit) UnitResponse {
	return UnitResponse{
		UnitDescriptor: unit.Descriptor(),
		UnitState:      unit.State(),
	}
}

func (s *server) handleGetUnits(c *gin.Context) {
	units := s.units.Units()

	out := make([]UnitResponse, 0, len(units))
	for _, unit := range units {
		out = append(out, toResponse(unit))
	}

	c.JSON(http.StatusOK, gin.H{"units": out})
}

func (s *server) handleGetUnit(c *gin.Context) {
	unit, found := s.units.Get(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unit not found"})
		return
	}

	c.JSON(http.StatusOK, toResponse(unit))
}

// handleResetBatch accepts the action and runs it in the background, the outcome only reaches the log
func (s *server) handleResetBatch(c *gin.Context) {
	var req ResetBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BatchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch_id is required"})
		return
	}

	s.mutActions.Lock()
	defer s.mutActions.Unlock()

	if s.ctx.Err() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is closing"})
		return
	}

	log.Debug("reset batch requested", "batch", req.BatchID, "sender", c.Request.RemoteAddr)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), resetTimeout)
		defer cancel()

		_ = s.resetter.ResetBatch(ctx, req.BatchID)
	}()

	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

func (s *server) handleRefresh(c *gin.Context) {
	job := c.Param("job")
	err := s.trigger.Trigger(job)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	case errors.Is(err, scheduler.ErrUnknownJob):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, scheduler.ErrJobRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *server) IsInterfaceNil() bool {
	return s == nil
}
