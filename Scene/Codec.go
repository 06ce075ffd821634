package Scene

import (
	"encoding/json"

	"github.com/GrainArc/GeoMesh/Transformer"
)

type sceneJSON struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Center Transformer.Center `json:"center"`
	Scale  float64            `json:"scale"`
	Style  Style              `json:"style"`
	Axes   []Line             `json:"axes,omitempty"`
	Models []ModelNode        `json:"models,omitempty"`
	Nodes  []*RegionNode      `json:"nodes"`
}

func (s *Scene) MarshalJSON() ([]byte, error) {
	return json.Marshal(sceneJSON{
		ID:     s.ID,
		Name:   s.Name,
		Center: s.Center,
		Scale:  s.Scale,
		Style:  s.Style,
		Axes:   s.Axes,
		Models: s.Models,
		Nodes:  s.Nodes(),
	})
}

func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw sceneJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Reset()
	s.ID, s.Name, s.Center, s.Scale, s.Style = raw.ID, raw.Name, raw.Center, raw.Scale, raw.Style
	s.Axes, s.Models = raw.Axes, raw.Models
	for _, n := range raw.Nodes {
		if err := s.Attach(n); err != nil {
			return err
		}
	}
	return nil
}
