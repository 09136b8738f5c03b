// Package web is the browser presenter: an echo server that paints frames
// as HTML and turns HTMX requests into gestures.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"taskcal/internal/app"
	"taskcal/internal/export"
	"taskcal/internal/storage"
	"taskcal/internal/task"
)

const (
	actionToggle       = "toggle"
	actionEdit         = "edit"
	actionSave         = "save"
	actionCancel       = "cancel"
	actionDelete       = "delete"
	actionEvent        = "event"
	actionDay          = "day"
	actionAgendaToggle = "agenda-toggle"

	dateParam = "2006-01-02"
)

type Server struct {
	app    *app.App
	tokens *Tokens
	paint  painter
	log    zerolog.Logger
	clock  func() time.Time
	e      *echo.Echo
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

func New(a *app.App, tokens *Tokens, opts ...Option) *Server {
	s := &Server{
		app:    a,
		tokens: tokens,
		paint:  painter{tokens: tokens, labels: a.Labels()},
		log:    zerolog.Nop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.log.Info()
			if v.Error != nil {
				ev = s.log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(htmxOnly)
	s.routes(e)
	s.e = e
	return s
}

// htmxOnly rejects mutating requests that lack the HX-Request header.
func htmxOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Header.Get("HX-Request") != "true" {
			return echo.NewHTTPError(http.StatusForbidden, "HTMX request required")
		}
		return next(c)
	}
}

func (s *Server) routes(e *echo.Echo) {
	e.GET("/", s.handlePage)
	e.GET("/app", s.handleFragment)
	e.POST("/tasks", s.handleSubmit)
	e.POST("/filter/:filter", s.handleFilter)
	e.POST("/view/:view", s.handleView)
	e.POST("/calendar/nav/:dir", s.handleNavigate)
	e.POST("/calendar/mode/:mode", s.handleMode)
	e.POST("/agenda/close", s.handleCloseAgenda)
	e.POST("/actions/:action", s.handleAction)
	e.GET("/api/events", s.handleEvents)
	e.GET("/export/tasks.ics", s.handleICS)
	e.GET("/export/tasks.xlsx", s.handleXLSX)
	e.GET("/export/tasks.json", s.handleJSON)
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.e.Start(addr)
	}()
	s.log.Info().Str("listen", addr).Msg("serving")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.e.Shutdown(shutdownCtx)
	}
}

func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response())
}

func (s *Server) repaint(c echo.Context, cmd app.Command) error {
	frame := s.app.Dispatch(c.Request().Context(), cmd)
	return render(c, http.StatusOK, s.paint.App(frame))
}

func (s *Server) handlePage(c echo.Context) error {
	return render(c, http.StatusOK, s.paint.Page(s.app.Frame()))
}

func (s *Server) handleFragment(c echo.Context) error {
	return render(c, http.StatusOK, s.paint.App(s.app.Frame()))
}

func readForm(c echo.Context) app.Form {
	return app.Form{
		Text:     c.FormValue("text"),
		Due:      c.FormValue("dueDate"),
		Priority: c.FormValue("priority"),
	}
}

func (s *Server) handleSubmit(c echo.Context) error {
	return s.repaint(c, app.SubmitTask(readForm(c)))
}

func (s *Server) handleFilter(c echo.Context) error {
	name := c.Param("filter")
	if f, ok := task.ParseFilter(name); ok {
		name = string(f)
	}
	return s.repaint(c, app.ClickFilter(name))
}

func (s *Server) handleView(c echo.Context) error {
	return s.repaint(c, app.SwitchView(c.Param("view")))
}

func (s *Server) handleNavigate(c echo.Context) error {
	return s.repaint(c, app.NavigateCalendar(c.Param("dir")))
}

func (s *Server) handleMode(c echo.Context) error {
	return s.repaint(c, app.SetCalendarMode(c.Param("mode")))
}

func (s *Server) handleCloseAgenda(c echo.Context) error {
	return s.repaint(c, app.CloseAgenda())
}

func (s *Server) handleAction(c echo.Context) error {
	name := c.Param("action")
	switch name {
	case actionToggle, actionEdit, actionSave, actionCancel, actionDelete, actionEvent, actionDay, actionAgendaToggle:
	default:
		return echo.NewHTTPError(http.StatusNotFound, "unknown action")
	}
	a, err := s.tokens.Decode(name, c.FormValue("p"))
	if err != nil {
		s.log.Debug().Err(err).Str("action", name).Msg("rejected action token")
		return echo.NewHTTPError(http.StatusBadRequest, "bad action token")
	}

	id := task.ID(a.ID)
	var cmd app.Command
	switch name {
	case actionToggle:
		cmd = app.ClickTask(id)
	case actionEdit:
		cmd = app.ClickEdit(id)
	case actionSave:
		cmd = app.ClickSave(id, readForm(c))
	case actionCancel:
		cmd = app.ClickCancelEdit()
	case actionDelete:
		cmd = app.ClickDelete(id)
	case actionEvent:
		cmd = app.ClickCalendarEvent(id)
	case actionAgendaToggle:
		cmd = app.ClickAgendaItem(id)
	case actionDay:
		date, err := time.ParseInLocation(dateParam, a.Date, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "bad action token")
		}
		cmd = app.ClickCalendarDay(date)
	}
	return s.repaint(c, cmd)
}

func (s *Server) handleEvents(c echo.Context) error {
	return c.JSON(http.StatusOK, s.app.Events())
}

func (s *Server) handleICS(c echo.Context) error {
	body := export.ICS(s.app.Tasks(), s.app.Labels(), s.clock())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tasks.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func (s *Server) handleXLSX(c echo.Context) error {
	var buf bytes.Buffer
	if err := export.XLSX(&buf, s.app.Tasks(), s.app.Labels()); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tasks.xlsx"`)
	return c.Blob(http.StatusOK, export.XLSXContentType, buf.Bytes())
}

func (s *Server) handleJSON(c echo.Context) error {
	blob, err := storage.Encode(s.app.Tasks())
	if err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tasks.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, blob)
}
