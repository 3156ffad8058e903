package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/nkoval/virtualcampus/backend/internal/domain"
	"github.com/nkoval/virtualcampus/backend/internal/heading"
	"github.com/nkoval/virtualcampus/backend/internal/nav"
	"github.com/nkoval/virtualcampus/backend/internal/store"
)

// APIHandlers exposes HTTP handlers for the tour API.
type APIHandlers struct {
	logger           *slog.Logger
	controller       *nav.Controller
	store            *store.Store
	headings         *heading.Resolver
	headingTolerance float64
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, controller *nav.Controller, s *store.Store, h *heading.Resolver, headingTolerance float64) *APIHandlers {
	if headingTolerance <= 0 {
		headingTolerance = 45
	}
	return &APIHandlers{
		logger:           logger,
		controller:       controller,
		store:            s,
		headings:         h,
		headingTolerance: headingTolerance,
	}
}

func (h *APIHandlers) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	respondJSON(w, http.StatusOK, toStateResponse(h.controller.State()))
}

func (h *APIHandlers) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload navigateRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		state nav.State
		err   error
	)
	switch {
	case payload.Floor != nil:
		state, err = h.controller.NavigateToFloor(r.Context(), *payload.Floor)
	case payload.Direction != "":
		dir := domain.Direction(payload.Direction)
		if !dir.Valid() {
			writeError(w, http.StatusBadRequest, "unknown direction")
			return
		}
		state, err = h.controller.Navigate(r.Context(), dir)
	default:
		writeError(w, http.StatusBadRequest, "direction or floor is required")
		return
	}

	if err != nil {
		h.writeNavError(w, err, "navigate failed")
		return
	}
	respondJSON(w, http.StatusOK, toStateResponse(state))
}

func (h *APIHandlers) handleJump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload jumpRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.LocationID == "" {
		writeError(w, http.StatusBadRequest, "locationId is required")
		return
	}

	state, err := h.controller.JumpTo(r.Context(), payload.LocationID)
	if err != nil {
		h.writeNavError(w, err, "jump failed")
		return
	}
	respondJSON(w, http.StatusOK, toStateResponse(state))
}

func (h *APIHandlers) handleRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	target := r.URL.Query().Get("to")
	if target == "" {
		writeError(w, http.StatusBadRequest, "to parameter is required")
		return
	}

	route, err := h.controller.PlanRouteTo(target)
	if err != nil {
		h.writeNavError(w, err, "route planning failed")
		return
	}

	respondJSON(w, http.StatusOK, routeResponse{
		From:             route.SourceID,
		To:               route.TargetID,
		Path:             route.Path,
		Distance:         route.Distance,
		Description:      route.Description,
		EstimatedSeconds: int(route.EstimatedTime.Seconds()),
	})
}

func (h *APIHandlers) handleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	locations := h.store.All()
	items := make([]locationSummary, 0, len(locations))
	for _, loc := range locations {
		items = append(items, locationSummary{
			ID:       loc.ID,
			Name:     loc.Name,
			Building: loc.Building,
			Floor:    loc.Floor,
			Hub:      loc.IsHub(),
		})
	}
	// Store iteration order is unspecified; sort for a stable API.
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	respondJSON(w, http.StatusOK, listLocationsResponse{Items: items})
}

// handleLocation serves /locations/{id} and /locations/{id}/controls.
func (h *APIHandlers) handleLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/locations/"), "/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "location ID is required")
		return
	}

	id := rest
	controls := false
	if strings.HasSuffix(rest, "/controls") {
		id = strings.TrimSuffix(rest, "/controls")
		controls = true
	}

	loc := h.store.Get(id)
	if loc == nil {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}

	if controls {
		h.writeControls(w, r, loc)
		return
	}
	respondJSON(w, http.StatusOK, h.toLocationResponse(loc))
}

// writeControls lists the directional buttons visible at the given camera
// heading: a horizontal control shows only when the heading is within the
// tolerance window of its angle; vertical/special controls and floor
// selection are always shown.
func (h *APIHandlers) writeControls(w http.ResponseWriter, r *http.Request, loc *domain.Location) {
	camera := h.controller.State().Heading
	if v := r.URL.Query().Get("heading"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid heading")
			return
		}
		camera = heading.Normalize(parsed)
	}

	resp := controlsResponse{
		LocationID: loc.ID,
		Heading:    camera,
		Controls:   []controlResponse{},
	}

	for _, dir := range domain.HorizontalDirections {
		edge, ok := loc.Edge(dir)
		if !ok {
			continue
		}
		angle := h.headings.AngleOf(loc, dir)
		if heading.Delta(camera, angle) > h.headingTolerance {
			continue
		}
		resp.Controls = append(resp.Controls, controlResponse{
			Direction: string(dir),
			Angle:     angle,
			Targets:   edge.Targets(),
		})
	}
	for _, dir := range domain.SpecialDirections {
		edge, ok := loc.Edge(dir)
		if !ok {
			continue
		}
		resp.Controls = append(resp.Controls, controlResponse{
			Direction: string(dir),
			Angle:     h.headings.AngleOf(loc, dir),
			Targets:   edge.Targets(),
		})
	}
	for _, floor := range loc.SortedFloors() {
		resp.Floors = append(resp.Floors, floorControlResponse{
			Floor:  floor,
			Target: loc.FloorConnections[floor],
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) toLocationResponse(loc *domain.Location) locationResponse {
	resp := locationResponse{
		ID:          loc.ID,
		Name:        loc.Name,
		Building:    loc.Building,
		Floor:       loc.Floor,
		ImageURL:    loc.ImageURL,
		BaseHeading: loc.BaseHeading,
		Hub:         loc.IsHub(),
		Edges:       []edgeResponse{},
	}

	appendEdges := func(dirs []domain.Direction) {
		for _, dir := range dirs {
			edge, ok := loc.Edge(dir)
			if !ok {
				continue
			}
			resp.Edges = append(resp.Edges, edgeResponse{
				Direction: string(dir),
				Angle:     h.headings.AngleOf(loc, dir),
				Targets:   edge.Targets(),
			})
		}
	}
	appendEdges(domain.HorizontalDirections)
	appendEdges(domain.SpecialDirections)

	for _, floor := range loc.SortedFloors() {
		resp.Floors = append(resp.Floors, floorControlResponse{
			Floor:  floor,
			Target: loc.FloorConnections[floor],
		})
	}
	return resp
}

func (h *APIHandlers) writeNavError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, nav.ErrTransitionPending):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, nav.ErrAlreadyThere):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, nav.ErrNoEdge), errors.Is(err, nav.ErrUnknownLocation), errors.Is(err, nav.ErrNoRoute):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		writeError(w, http.StatusBadGateway, "failed to load location image")
	}
}

// --- Request & Response DTOs ---

type navigateRequest struct {
	Direction string `json:"direction"`
	Floor     *int   `json:"floor"`
}

type jumpRequest struct {
	LocationID string `json:"locationId"`
}

type stateResponse struct {
	LocationID    string  `json:"locationId"`
	Heading       float64 `json:"heading"`
	Transitioning bool    `json:"transitioning"`
}

type routeResponse struct {
	From             string   `json:"from"`
	To               string   `json:"to"`
	Path             []string `json:"path"`
	Distance         int      `json:"distance"`
	Description      string   `json:"description"`
	EstimatedSeconds int      `json:"estimatedSeconds"`
}

type listLocationsResponse struct {
	Items []locationSummary `json:"items"`
}

type locationSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building"`
	Floor    int    `json:"floor"`
	Hub      bool   `json:"hub"`
}

type locationResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Building    string                 `json:"building"`
	Floor       int                    `json:"floor"`
	ImageURL    string                 `json:"imageUrl"`
	BaseHeading float64                `json:"baseHeading"`
	Hub         bool                   `json:"hub"`
	Edges       []edgeResponse         `json:"edges"`
	Floors      []floorControlResponse `json:"floors,omitempty"`
}

type edgeResponse struct {
	Direction string   `json:"direction"`
	Angle     float64  `json:"angle"`
	Targets   []string `json:"targets"`
}

type controlsResponse struct {
	LocationID string                 `json:"locationId"`
	Heading    float64                `json:"heading"`
	Controls   []controlResponse      `json:"controls"`
	Floors     []floorControlResponse `json:"floors,omitempty"`
}

type controlResponse struct {
	Direction string   `json:"direction"`
	Angle     float64  `json:"angle"`
	Targets   []string `json:"targets"`
}

type floorControlResponse struct {
	Floor  int    `json:"floor"`
	Target string `json:"target"`
}

// --- Helpers ---

func toStateResponse(s nav.State) stateResponse {
	return stateResponse{
		LocationID:    s.LocationID,
		Heading:       s.Heading,
		Transitioning: s.Transitioning,
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
