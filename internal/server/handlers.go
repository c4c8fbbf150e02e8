package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/Gaurav-Gosain/dashpanel/internal/engine"
	"github.com/Gaurav-Gosain/dashpanel/internal/geometry"
	"github.com/Gaurav-Gosain/dashpanel/internal/gesture"
	"github.com/Gaurav-Gosain/dashpanel/internal/layout"
	"github.com/Gaurav-Gosain/dashpanel/internal/model"
)

// Phases of a drag or resize gesture in the URL.
const (
	phaseStart = "start"
	phaseMove  = "move"
	phaseEnd   = "end"
)

type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Visible int    `json:"visible"`
	Presets int    `json:"presets"`
}

// PanelInfo describes one registered panel.
type PanelInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
}

// LayoutResponse is the committed layout plus what a renderer needs to draw
// it, including live geometry of any gesture in flight.
type LayoutResponse struct {
	model.Snapshot
	Viewport model.Size         `json:"viewport"`
	Panels   []engine.PanelView `json:"panels"`
}

// GestureResponse reports the result of a gesture phase.
type GestureResponse struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Phase    string         `json:"phase"`
	Geometry model.Geometry `json:"geometry"`
	Gesture  string         `json:"gesture,omitempty"`
	Collided bool           `json:"collided,omitempty"`
	Resolved bool           `json:"resolved,omitempty"`
	Snapped  *model.Point   `json:"snapped,omitempty"`
	Magnet   *model.Point   `json:"magnet,omitempty"`
}

// PresetLoadResponse is returned after loading a preset.
type PresetLoadResponse struct {
	Name    string   `json:"name"`
	Visible []string `json:"visible"`
}

type visibleRequest struct {
	Visible []string `json:"visible"`
}

type presetRequest struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into v. An empty body is an error.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

func (s *Server) layout() LayoutResponse {
	return LayoutResponse{
		Snapshot: s.eng.Snapshot(),
		Viewport: s.eng.Viewport(),
		Panels:   s.eng.Panels(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Visible: len(s.eng.Visible()),
		Presets: len(s.eng.PresetNames()),
	})
}

func (s *Server) handlePanels(w http.ResponseWriter, _ *http.Request) {
	visible := s.eng.Visible()
	ids := s.widgets.IDs()
	panels := make([]PanelInfo, 0, len(ids))
	for _, id := range ids {
		panels = append(panels, PanelInfo{
			ID:      id,
			Title:   s.widgets.Title(id),
			Visible: slices.Contains(visible, id),
		})
	}
	writeJSON(w, http.StatusOK, panels)
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.layout())
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var size model.Size
	if err := decode(w, r, &size); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if size.Width < 0 || size.Height < 0 {
		writeError(w, http.StatusBadRequest, "viewport size must not be negative")
		return
	}
	s.eng.SetViewport(size)
	writeJSON(w, http.StatusOK, size)
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	var req visibleRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, id := range req.Visible {
		if !s.widgets.Has(id) {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown panel %q", id))
			return
		}
	}
	s.eng.SetVisible(r.Context(), req.Visible)
	writeJSON(w, http.StatusOK, s.layout())
}

func (s *Server) handleFront(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.eng.IsVisible(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("panel %q is not visible", id))
		return
	}
	z := s.eng.BringToFront(id)
	writeJSON(w, http.StatusOK, engine.PanelView{ID: id, Z: z, Geometry: s.live(id)})
}

func (s *Server) live(id string) model.Geometry {
	g, _ := s.eng.Geometry(id)
	return g
}

func gestureResponse(id, phase string, out gesture.Outcome) GestureResponse {
	resp := GestureResponse{
		ID:       id,
		Kind:     out.Kind.String(),
		Phase:    phase,
		Geometry: out.Final,
		Gesture:  out.Gesture,
		Collided: out.Collided,
		Resolved: out.Resolved,
	}
	if out.Kind == gesture.Drag {
		snapped := out.Snapped
		resp.Snapped = &snapped
		if out.Magnet != nil {
			// Position after the magnetic pull, before collision resolution.
			magnet := geometry.ApplySnapPoint(out.Snapped, out.Magnet)
			resp.Magnet = &magnet
		}
	}
	return resp
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	phase := chi.URLParam(r, "phase")

	switch phase {
	case phaseStart:
		if !s.eng.IsVisible(id) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("panel %q is not visible", id))
			return
		}
		if !s.eng.DragStart(id) {
			writeError(w, http.StatusConflict, fmt.Sprintf("cannot start dragging %q", id))
			return
		}
		writeJSON(w, http.StatusOK, GestureResponse{ID: id, Kind: gesture.Drag.String(), Phase: phase, Geometry: s.live(id)})

	case phaseMove:
		var p model.Point
		if err := decode(w, r, &p); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if s.eng.GestureOf(id) != gesture.Drag {
			writeError(w, http.StatusConflict, fmt.Sprintf("%q is not being dragged", id))
			return
		}
		s.eng.DragMove(id, p)
		writeJSON(w, http.StatusOK, GestureResponse{ID: id, Kind: gesture.Drag.String(), Phase: phase, Geometry: s.live(id)})

	case phaseEnd:
		if s.eng.GestureOf(id) != gesture.Drag {
			writeError(w, http.StatusConflict, fmt.Sprintf("%q is not being dragged", id))
			return
		}
		out, err := s.eng.DragEnd(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, gestureResponse(id, phase, out))

	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown drag phase %q", phase))
	}
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	phase := chi.URLParam(r, "phase")

	switch phase {
	case phaseStart:
		if !s.eng.IsVisible(id) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("panel %q is not visible", id))
			return
		}
		if !s.eng.ResizeStart(id) {
			writeError(w, http.StatusConflict, fmt.Sprintf("cannot start resizing %q", id))
			return
		}
		writeJSON(w, http.StatusOK, GestureResponse{ID: id, Kind: gesture.Resize.String(), Phase: phase, Geometry: s.live(id)})

	case phaseMove:
		var size model.Size
		if err := decode(w, r, &size); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if s.eng.GestureOf(id) != gesture.Resize {
			writeError(w, http.StatusConflict, fmt.Sprintf("%q is not being resized", id))
			return
		}
		s.eng.ResizeMove(id, s.eng.Policy().ClampSize(size))
		writeJSON(w, http.StatusOK, GestureResponse{ID: id, Kind: gesture.Resize.String(), Phase: phase, Geometry: s.live(id)})

	case phaseEnd:
		if s.eng.GestureOf(id) != gesture.Resize {
			writeError(w, http.StatusConflict, fmt.Sprintf("%q is not being resized", id))
			return
		}
		out, err := s.eng.ResizeEnd(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, gestureResponse(id, phase, out))

	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown resize phase %q", phase))
	}
}

func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	presets := s.eng.Presets()
	if presets == nil {
		presets = []model.Preset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := s.eng.SavePreset(r.Context(), req.Name)
	switch {
	case errors.Is(err, layout.ErrEmptyPresetName):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.eng.PresetNames())
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	visible, ok := s.eng.LoadPreset(r.Context(), name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no preset named %q", name))
		return
	}
	writeJSON(w, http.StatusOK, PresetLoadResponse{Name: name, Visible: visible})
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ok, err := s.eng.DeletePreset(r.Context(), name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no preset named %q", name))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.layout())
}
