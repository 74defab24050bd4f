package render

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	apperrors "github.com/mcncl/shapeview/internal/errors"
	"github.com/mcncl/shapeview/internal/models"
	"github.com/mcncl/shapeview/internal/shape"
)

// JSONRenderer writes the descriptor tree of a document. Every node carries
// its "shape" tag; nested objects and nested tables hold descriptors for
// their children, simple shapes hold the scalars themselves.
//
// Table rows are {"cells": {...}} objects. Columns a row lacks are null in
// "cells" and listed in the row's "absent" array. Rows of a nested table
// that are not mappings are {"element": descriptor}.
type JSONRenderer struct {
	opts Options
}

func (r *JSONRenderer) Render(w io.Writer, v models.JSONValue) error {
	var (
		out []byte
		err error
	)
	desc := r.Describe(v)
	if r.opts.Indent == "" {
		out, err = json.Marshal(desc)
	} else {
		out, err = json.MarshalIndent(desc, "", r.opts.Indent)
	}
	if err != nil {
		return apperrors.NewRenderError("failed to encode shape descriptors", err)
	}
	r.opts.Logger.Debug("rendered document", zap.Int("bytes", len(out)))
	return write(w, string(out)+"\n")
}

// Describe returns the descriptor tree of v.
func (r *JSONRenderer) Describe(v models.JSONValue) *models.JSONObject {
	return r.describe(v, 0)
}

func (r *JSONRenderer) describe(v models.JSONValue, depth int) *models.JSONObject {
	s := shape.Classify(v)
	node := models.NewJSONObject(4)
	node.Set("shape", s.Kind().String())

	if s.Kind() != shape.KindSimple && s.Kind() != shape.KindUnknown && r.opts.truncated(depth) {
		node.Set("truncated", true)
		node.Set("value", encodable(v))
		return node
	}

	switch s := s.(type) {
	case shape.Simple:
		node.Set("value", s.Value)

	case shape.SimpleArray:
		node.Set("items", models.JSONArray(s.Items))

	case shape.SimpleObject:
		fields := models.NewJSONObject(len(s.Fields))
		for _, f := range r.opts.visibleFields(s.Fields) {
			fields.Set(f.Key, f.Value)
		}
		node.Set("fields", fields)

	case shape.NestedObject:
		fields := models.NewJSONObject(len(s.Fields))
		for _, f := range r.opts.visibleFields(s.Fields) {
			fields.Set(f.Key, r.describe(f.Value, depth+1))
		}
		node.Set("fields", fields)

	case shape.SimpleTable:
		columns := r.opts.visibleColumns(s.Columns)
		rows := make(models.JSONArray, len(s.Rows))
		for i, row := range s.Rows {
			rows[i] = tableRow(columns, func(column string) (models.JSONValue, bool) {
				return row.Lookup(column)
			})
		}
		node.Set("columns", columns)
		node.Set("rows", rows)

	case shape.NestedTable:
		columns := r.opts.visibleColumns(s.Columns)
		rows := make(models.JSONArray, len(s.Rows))
		for i, row := range s.Rows {
			if !shape.IsMapping(row) {
				element := models.NewJSONObject(1)
				element.Set("element", r.describe(row, depth+1))
				rows[i] = element
				continue
			}
			rows[i] = tableRow(columns, func(column string) (models.JSONValue, bool) {
				v, ok := shape.Cell(row, column)
				if !ok {
					return nil, false
				}
				return r.describe(v, depth+1), true
			})
		}
		node.Set("columns", columns)
		node.Set("rows", rows)

	case shape.Unknown:
		node.Set("value", encodable(s.Value))
	}
	return node
}

func tableRow(columns []string, cell func(column string) (models.JSONValue, bool)) *models.JSONObject {
	cells := models.NewJSONObject(len(columns))
	var absent []string
	for _, column := range columns {
		v, ok := cell(column)
		if !ok {
			absent = append(absent, column)
		}
		cells.Set(column, v)
	}

	row := models.NewJSONObject(2)
	row.Set("cells", cells)
	if len(absent) > 0 {
		row.Set("absent", absent)
	}
	return row
}

// encodable returns v when it can be encoded as JSON, and its printed form
// otherwise.
func encodable(v any) any {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}
