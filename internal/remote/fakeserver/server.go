// ABOUTME: In-process fake of the remote schedule API for tests.
// ABOUTME: Gin router behind httptest with bearer auth, call counts and failure injection.
package fakeserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/workouts/internal/models"
)

// Route names accepted by the failure-injection and counting helpers.
const (
	RouteSchedules = "schedules"
	RouteWorkouts  = "workouts"
	RouteWeekNames = "weekNames"
)

type failure struct {
	status int
	body   string
}

// Server serves /api/schedules, /api/workouts/:week and /api/weekNames.
type Server struct {
	*httptest.Server

	token string

	mu        sync.Mutex
	schedules []*models.Schedule
	calls     map[string]int
	failures  map[string]failure
	raw       map[string]string
	remoteErr string
	delay     time.Duration
	gate      chan struct{}
}

// New starts a fake server that accepts only the given bearer token.
func New(token string) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		token:    token,
		calls:    map[string]int{},
		failures: map[string]failure{},
		raw:      map[string]string{},
	}

	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.Use(s.authMiddleware())
	{
		api.GET("/schedules", s.handle(RouteSchedules, s.listSchedules))
		api.GET("/workouts/:week", s.handle(RouteWorkouts, s.getSchedule))
		api.GET("/weekNames", s.handle(RouteWeekNames, s.weekNames))
	}

	s.Server = httptest.NewServer(router)
	return s
}

// BaseURL returns the API root to hand to remote.New.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// SetSchedules replaces the served data set.
func (s *Server) SetSchedules(schedules ...*models.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules = schedules
}

// FailWith makes every request to route answer with status until cleared.
func (s *Server) FailWith(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, body: `{"error":"injected failure"}`}
}

// SetRawBody makes route answer 200 with body verbatim.
func (s *Server) SetRawBody(route, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[route] = body
}

// SetRemoteError makes /schedules answer with success=false and msg.
func (s *Server) SetRemoteError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteErr = msg
}

// ClearFailures removes all injected failures, raw bodies and remote errors.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]failure{}
	s.raw = map[string]string{}
	s.remoteErr = ""
}

// SetDelay makes every handler wait d before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Hold blocks all handlers until the returned release func is called.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many authenticated requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] != s.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) handle(route string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.calls[route]++
		delay, gate := s.delay, s.gate
		fail, failing := s.failures[route]
		raw, hasRaw := s.raw[route]
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-c.Request.Context().Done():
				return
			}
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				return
			}
		}

		if failing {
			c.Data(fail.status, "application/json", []byte(fail.body))
			return
		}
		if hasRaw {
			c.Data(http.StatusOK, "application/json", []byte(raw))
			return
		}
		next(c)
	}
}

func (s *Server) listSchedules(c *gin.Context) {
	s.mu.Lock()
	data := append([]*models.Schedule{}, s.schedules...)
	remoteErr := s.remoteErr
	s.mu.Unlock()

	if remoteErr != "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": remoteErr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
}

func (s *Server) getSchedule(c *gin.Context) {
	week := c.Param("week")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sched := range s.schedules {
		if sched.Name == week {
			c.JSON(http.StatusOK, sched)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Sheet not found"})
}

func (s *Server) weekNames(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.schedules))
	for _, sched := range s.schedules {
		names = append(names, sched.Name)
	}
	c.JSON(http.StatusOK, names)
}
