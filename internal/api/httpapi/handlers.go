package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/application"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

type healthResponse struct {
	Status        string `json:"status"`
	Detector      string `json:"detector"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy", Detector: "unchecked", UptimeSeconds: int64(time.Since(s.started).Seconds())}
	if s.detector != nil {
		if err := s.detector.Health(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Detector = err.Error()
		} else {
			resp.Detector = "ready"
		}
	}
	s.ok(w, http.StatusOK, resp)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, res)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.ok(w, http.StatusOK, authFrom(r.Context()))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req application.NewUser
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.auth.CreateUser(r.Context(), authFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusCreated, user)
}

func (s *Server) listClassrooms(w http.ResponseWriter, r *http.Request) {
	list, err := s.classrooms.List(r.Context(), authFrom(r.Context()), r.URL.Query().Get("grade"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, list)
}

func (s *Server) createClassroom(w http.ResponseWriter, r *http.Request) {
	var req application.NewClassroom
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.classrooms.Create(r.Context(), authFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusCreated, c)
}

func (s *Server) getClassroom(w http.ResponseWriter, r *http.Request) {
	c, err := s.classrooms.Get(r.Context(), authFrom(r.Context()), domain.ClassroomID(chi.URLParam(r, "id")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, c)
}

func (s *Server) classroomScores(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	scores, err := s.reports.ClassroomHistory(r.Context(), authFrom(r.Context()),
		domain.ClassroomID(chi.URLParam(r, "id")), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, scores)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req application.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	score, err := s.analysis.Analyze(r.Context(), authFrom(r.Context()), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusCreated, score)
}

type batchRequest struct {
	Images []application.AnalyzeRequest `json:"images"`
}

func (s *Server) batchAnalyze(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.analysis.BatchAnalyze(r.Context(), authFrom(r.Context()), req.Images)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, res)
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	board, err := s.leaderboard.Leaderboard(r.Context(), authFrom(r.Context()), application.LeaderboardQuery{
		Period:     q.Get("period"),
		GradeLevel: q.Get("grade"),
		Limit:      limit,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, board)
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reports.Statistics(r.Context(), authFrom(r.Context()), timeRange(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, stats)
}

func (s *Server) trends(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	points, err := s.reports.Trends(r.Context(), authFrom(r.Context()), days,
		domain.ClassroomID(r.URL.Query().Get("classroom_id")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, points)
}

func (s *Server) improvement(w http.ResponseWriter, r *http.Request) {
	imps, err := s.reports.Improvements(r.Context(), authFrom(r.Context()),
		domain.ClassroomID(r.URL.Query().Get("classroom_id")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, imps)
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	var ids []domain.ClassroomID
	for _, id := range strings.Split(r.URL.Query().Get("classroom_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, domain.ClassroomID(id))
		}
	}
	rows, err := s.reports.Compare(r.Context(), authFrom(r.Context()), timeRange(r), ids)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, rows)
}

// timeRange reads the report period; "period" is accepted as an alias of
// "timeRange".
func timeRange(r *http.Request) string {
	q := r.URL.Query()
	if v := q.Get("timeRange"); v != "" {
		return v
	}
	return q.Get("period")
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
	}
	return n, nil
}
