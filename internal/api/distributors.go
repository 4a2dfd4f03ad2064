package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	apperrors "github.com/ZanzyTHEbar/distributor-competition/internal/errors"
	"github.com/ZanzyTHEbar/distributor-competition/internal/security"
	"github.com/ZanzyTHEbar/distributor-competition/internal/session"
	"github.com/gin-gonic/gin"
)

// AddRequest adds one distributor.
type AddRequest struct {
	Name string `json:"name" form:"name"`
}

// BulkAddRequest adds one distributor per non-blank line.
type BulkAddRequest struct {
	Names string `json:"names" form:"names"`
}

// addDistributor godoc
// @Summary      Add a distributor
// @Description  Blank names are ignored. Counts start unset.
// @Tags         distributors
// @Accept       json
// @Produce      json
// @Param        request  body      AddRequest  true  "Distributor name"
// @Success      200      {object}  session.State
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/distributors [post]
func (h *Handler) addDistributor(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, apperrors.NewValidationError("Invalid request body", err))
		return
	}

	if err := security.ValidateName(req.Name); err != nil {
		h.fail(c, apperrors.NewValidationError(err.Error()))
		return
	}

	s := currentSession(c)
	state := s.Add(req.Name)
	h.logger.MutationLogger(s.ID, "add", state.Revision, len(state.Records))
	h.respond(c, state, "")
}

// bulkAddDistributors godoc
// @Summary      Add distributors in bulk
// @Description  One name per line. Blank lines are skipped and duplicates are kept.
// @Tags         distributors
// @Accept       json
// @Produce      json
// @Param        request  body      BulkAddRequest  true  "Newline separated names"
// @Success      200      {object}  session.State
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/distributors/bulk [post]
func (h *Handler) bulkAddDistributors(c *gin.Context) {
	var req BulkAddRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, apperrors.NewValidationError("Invalid request body", err))
		return
	}

	for i, line := range strings.Split(req.Names, "\n") {
		if err := security.ValidateName(strings.TrimSpace(line)); err != nil {
			h.fail(c, apperrors.NewValidationError(fmt.Sprintf("line %d: %s", i+1, err)))
			return
		}
	}

	s := currentSession(c)
	before := s.State().Revision
	state := s.BulkAdd(req.Names)
	h.logger.MutationLogger(s.ID, "bulk_add", state.Revision, len(state.Records))

	flash := ""
	if state.Revision != before {
		flash = fmt.Sprintf("Added distributors. %d in the competition.", len(state.Records))
	}
	h.respond(c, state, flash)
}

// updateDistributor godoc
// @Summary      Edit a distributor
// @Description  Sets each field present in the body. Count fields take a non-negative integer; anything else clears the count. Unknown ids are ignored.
// @Tags         distributors
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Distributor id"
// @Param        request  body      map[string]string  true  "Fields: name, activities, amh_sold, urus_sold"
// @Success      200      {object}  session.State
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/distributors/{id} [patch]
func (h *Handler) updateDistributor(c *gin.Context) {
	fields, err := readFields(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	changes := make([]session.FieldChange, 0, len(fields))
	for _, key := range sortedKeys(fields) {
		field, err := competition.ParseField(key)
		if err != nil {
			h.fail(c, err)
			return
		}
		if field == competition.FieldName {
			if err := security.ValidateName(fields[key]); err != nil {
				h.fail(c, apperrors.NewValidationError(err.Error()))
				return
			}
		}
		changes = append(changes, session.FieldChange{Field: field, Value: fields[key]})
	}

	s := currentSession(c)
	state, err := s.Update(c.Param("id"), changes)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.MutationLogger(s.ID, "update", state.Revision, len(state.Records))
	h.respond(c, state, "")
}

// removeDistributor godoc
// @Summary      Remove a distributor
// @Tags         distributors
// @Produce      json
// @Param        id   path      string  true  "Distributor id"
// @Success      200  {object}  session.State
// @Router       /api/distributors/{id} [delete]
func (h *Handler) removeDistributor(c *gin.Context) {
	s := currentSession(c)
	state := s.Remove(c.Param("id"))
	h.logger.MutationLogger(s.ID, "remove", state.Revision, len(state.Records))
	h.respond(c, state, "")
}

// settingKeys maps request keys onto the weight they set.
var settingKeys = map[string]func(*competition.PointConfig) *int{
	"activity_weight":  func(p *competition.PointConfig) *int { return &p.ActivityWeight },
	"primary_weight":   func(p *competition.PointConfig) *int { return &p.PrimaryWeight },
	"secondary_weight": func(p *competition.PointConfig) *int { return &p.SecondaryWeight },
}

// updateSettings godoc
// @Summary      Change point weights
// @Description  Sets each weight present in the body. Unparsable values become 0. Every record is re-scored and re-ranked.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      competition.PointConfig  true  "Weights"
// @Success      200      {object}  session.State
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/settings [put]
func (h *Handler) updateSettings(c *gin.Context) {
	fields, err := readFields(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	s := currentSession(c)
	cfg := s.Config()
	for key, value := range fields {
		weight, ok := settingKeys[key]
		if !ok {
			h.fail(c, apperrors.NewValidationError(fmt.Sprintf("Unknown setting %q", key)))
			return
		}
		*weight(&cfg) = competition.ParseWeight(value)
	}

	state := s.SetPointConfig(cfg)
	h.logger.MutationLogger(s.ID, "set_point_config", state.Revision, len(state.Records))
	h.respond(c, state, "Settings saved.")
}

// readFields returns the key/value pairs of a JSON object or form body. JSON
// numbers keep their literal text and null becomes the empty string.
func readFields(c *gin.Context) (map[string]string, error) {
	fields := make(map[string]string)

	if c.ContentType() == gin.MIMEJSON {
		var raw map[string]json.RawMessage
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, apperrors.NewValidationError("Invalid request body", err)
		}
		for key, value := range raw {
			fields[key] = rawString(value)
		}
		return fields, nil
	}

	if err := c.Request.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, apperrors.NewValidationError("Invalid form body", err)
	}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields, nil
}

func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
