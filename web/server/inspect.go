package server

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/integrator"
	"github.com/df07/sphere-pathtracer/pkg/renderer"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool       `json:"hit"`
	ObjectIndex  int        `json:"objectIndex"`
	MaterialType string     `json:"materialType,omitempty"`
	GeometryType string     `json:"geometryType,omitempty"`
	Point        [3]float64 `json:"point"`
	Normal       [3]float64 `json:"normal"`
	Distance     float64    `json:"distance"`
	FrontFace    bool       `json:"frontFace"`
	Center       [3]float64 `json:"center"`
	Radius       float64    `json:"radius"`
	Albedo       [3]float64 `json:"albedo"`
	Emission     [3]float64 `json:"emission"`
	IsLight      bool       `json:"isLight"`
	Color        string     `json:"color,omitempty"` // Display swatch of the albedo or emission
}

// handleInspect casts the primary ray through the center of a pixel and
// reports the first object it hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	params, err := parseSceneParams(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, err := s.loadScene(params, s.logger)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := r.URL.Query()
	x, err := parseIntParam(query, "x", -1, 0, sceneObj.Width-1)
	if err == nil && x < 0 {
		err = errors.New("missing x")
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseIntParam(query, "y", -1, 0, sceneObj.Height-1)
	if err == nil && y < 0 {
		err = errors.New("missing y")
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, inspectPixel(sceneObj, x, y))
}

// inspectPixel casts a ray through the center of pixel (x, y), without jitter
func inspectPixel(sceneObj *scene.Scene, x, y int) InspectResponse {
	camera := renderer.NewCamera(sceneObj.Camera, sceneObj.Width, sceneObj.Height)
	ray := camera.GetRayAt(x, y, 0.5, 0.5)

	cfg := integrator.DefaultConfig()
	hit, ok := sceneObj.Hit(ray, cfg.TMin, cfg.TMax)
	if !ok {
		return InspectResponse{Hit: false, ObjectIndex: -1}
	}

	obj := sceneObj.Object(hit.ObjectIndex)
	response := InspectResponse{
		Hit:          true,
		ObjectIndex:  hit.ObjectIndex,
		MaterialType: string(obj.BSDF.Type()),
		GeometryType: "sphere",
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal.Vec()),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Center:       vecArray(obj.Center),
		Radius:       obj.Radius,
		Albedo:       colorArray(obj.Albedo),
		Emission:     colorArray(obj.Emission),
		IsLight:      obj.IsEmissive(),
	}
	if response.IsLight {
		response.Color = hexColor(obj.Emission)
	} else {
		response.Color = hexColor(obj.Albedo)
	}
	return response
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func colorArray(c core.Color) [3]float64 {
	return [3]float64{c.R, c.G, c.B}
}

func hexColor(c core.Color) string {
	rgba := c.ToRGBA()
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
