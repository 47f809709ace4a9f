package handlers

import (
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/services"
	"eco-route-service/internal/stoplist"
	"fmt"
)

// decodeOp turns a tagged request into a stop-list op. A resolveStop carrying
// a query instead of a place is returned as query with a nil op.
func decodeOp(req dto.OpRequest, presets *stoplist.Catalog) (op stoplist.Op, query string, err error) {
	index := func() (int, error) {
		if req.Index == nil {
			return 0, fmt.Errorf("decode op %s: %w: index is required", req.Type, domain.ErrValidation)
		}
		return *req.Index, nil
	}

	switch req.Type {
	case dto.OpInsertStop:
		return stoplist.InsertStop{}, "", nil

	case dto.OpRemoveStop:
		i, err := index()
		if err != nil {
			return nil, "", err
		}
		return stoplist.RemoveStop{Index: i}, "", nil

	case dto.OpEditLocation:
		i, err := index()
		if err != nil {
			return nil, "", err
		}
		return stoplist.EditLocation{Index: i, Text: req.Text}, "", nil

	case dto.OpResolveStop:
		i, err := index()
		if err != nil {
			return nil, "", err
		}
		switch {
		case req.Place != nil:
			return stoplist.ResolveStop{Index: i, Place: req.Place.ToDomain()}, "", nil
		case req.Query != "":
			return nil, req.Query, nil
		default:
			return nil, "", fmt.Errorf("decode op %s: %w: place or query is required", req.Type, domain.ErrValidation)
		}

	case dto.OpLoadPreset:
		if presets == nil {
			return nil, "", fmt.Errorf("decode op %s: %w %q", req.Type, services.ErrUnknownPreset, req.Preset)
		}
		t, ok := presets.Get(req.Preset)
		if !ok {
			return nil, "", fmt.Errorf("decode op %s: %w %q", req.Type, services.ErrUnknownPreset, req.Preset)
		}
		return stoplist.LoadPreset{Template: t}, "", nil

	case dto.OpSetField:
		return stoplist.SetField{Field: stoplist.Field(req.Field), Text: req.Text, Bool: req.Bool}, "", nil

	default:
		return nil, "", fmt.Errorf("decode op: %w: unknown type %q", domain.ErrValidation, req.Type)
	}
}
