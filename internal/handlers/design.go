// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mailcraft/internal/blocks"
	"mailcraft/internal/engine"
	"mailcraft/internal/models"
	"mailcraft/internal/placeholder"
	"mailcraft/internal/render"
)

// BlockPalette lists every block type with its default props, in palette
// order.
func (a *API) BlockPalette(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Type  blocks.Type  `json:"type"`
		Props blocks.Props `json:"props"`
	}
	out := make([]entry, 0, len(blocks.Types))
	for _, t := range blocks.Types {
		p, _ := blocks.Defaults(t)
		out = append(out, entry{Type: t, Props: p})
	}
	writeJSON(w, http.StatusOK, out)
}

// NewBlock returns a block of the requested type with default props and a
// fresh id.
func (a *API) NewBlock(w http.ResponseWriter, r *http.Request) {
	b, err := blocks.New(blocks.Type(chi.URLParam(r, "type")))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CompileDesign compiles a block design to a complete HTML document. The
// output keeps its {{name}} placeholders.
func (a *API) CompileDesign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Design  blocks.Design `json:"design"`
		Preview bool          `json:"preview"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	html := blocks.CompileWith(req.Design, blocks.Options{Preview: req.Preview})
	writeJSON(w, http.StatusOK, map[string]any{
		"html":      html,
		"variables": blocks.Variables(req.Design),
	})
}

// ValidateDesign reports the problems of a design without saving it.
func (a *API) ValidateDesign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Design blocks.Design `json:"design"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	problems := []string{}
	if err := blocks.Validate(req.Design); err != nil {
		var ve *blocks.ValidationError
		if !errors.As(err, &ve) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		problems = ve.Problems
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}

// designOp is one editing operation on a design.
type designOp struct {
	Op    string          `json:"op"`
	Type  blocks.Type     `json:"type"`
	ID    string          `json:"id"`
	Index *int            `json:"index"`
	To    int             `json:"to"`
	Props json.RawMessage `json:"props"`
}

// ApplyDesignOp applies an add, remove, move, duplicate or update
// operation and returns the new design. The input design is not stored;
// the editor saves through UpdatePost.
func (a *API) ApplyDesignOp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Design blocks.Design `json:"design"`
		designOp
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	d, id, err := applyOp(req.Design, req.designOp)
	switch {
	case errors.Is(err, blocks.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"design": d,
		"id":     id,
	})
}

// applyOp runs op against d. It returns the new design and the id of the
// block the operation produced or touched.
func applyOp(d blocks.Design, op designOp) (blocks.Design, string, error) {
	switch op.Op {
	case "add":
		b, err := blocks.New(op.Type)
		if err != nil {
			return nil, "", err
		}
		if len(op.Props) > 0 {
			if b.Props, err = blocks.DecodeProps(op.Type, op.Props); err != nil {
				return nil, "", err
			}
		}
		index := len(d)
		if op.Index != nil {
			index = *op.Index
		}
		return blocks.Add(d, b, index), b.ID, nil
	case "remove":
		out, err := blocks.Remove(d, op.ID)
		return out, op.ID, err
	case "move":
		out, err := blocks.MoveByID(d, op.ID, op.To)
		return out, op.ID, err
	case "duplicate":
		return blocks.Duplicate(d, op.ID)
	case "update":
		i := blocks.Find(d, op.ID)
		if i < 0 {
			return nil, "", fmt.Errorf("update %q: %w", op.ID, blocks.ErrNotFound)
		}
		props, err := mergeProps(d[i], op.Props)
		if err != nil {
			return nil, "", err
		}
		out, err := blocks.Update(d, op.ID, props)
		return out, op.ID, err
	default:
		return nil, "", fmt.Errorf("unknown op %q", op.Op)
	}
}

// mergeProps overlays a partial props object on the current props of b.
func mergeProps(b blocks.Block, patch json.RawMessage) (blocks.Props, error) {
	cur, err := json.Marshal(b.Props)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(cur, &fields); err != nil {
		return nil, err
	}
	if len(patch) > 0 {
		changes := map[string]json.RawMessage{}
		if err := json.Unmarshal(patch, &changes); err != nil {
			return nil, fmt.Errorf("decode props: %w", err)
		}
		for k, v := range changes {
			fields[k] = v
		}
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return blocks.DecodeProps(b.Type(), merged)
}

// DescribeVariables lists the variables of an HTML document or design with
// their kinds and the given values.
func (a *API) DescribeVariables(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML   string            `json:"html"`
		Design blocks.Design     `json:"design"`
		Values map[string]string `json:"values"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	src := req.HTML
	if len(req.Design) > 0 {
		src = blocks.Compile(req.Design)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"variables": placeholder.Describe(src, req.Values),
		"missing":   placeholder.Missing(src, req.Values),
		"problem":   placeholder.CheckValues(req.Values),
	})
}

// Preview renders unsaved editor content and returns the result as JSON,
// including the reference inspection of the output.
func (a *API) Preview(w http.ResponseWriter, r *http.Request) {
	var in engine.PreviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, insp, ok := a.preview(w, r, in)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"html":       res.HTML,
		"variables":  res.Variables,
		"unresolved": res.Unresolved,
		"complete":   res.Complete(),
		"inspection": insp,
	})
}

// previewFrameRequest is unsaved content plus the envelope fields shown
// around the frame.
type previewFrameRequest struct {
	engine.PreviewInput
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	Preheader string `json:"preheader"`
}

// PreviewFrame renders unsaved content inside the preview page served to
// the editor's iframe.
func (a *API) PreviewFrame(w http.ResponseWriter, r *http.Request) {
	var req previewFrameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, insp, ok := a.preview(w, r, req.PreviewInput)
	if !ok {
		return
	}
	a.writeFrame(w, r, &render.PreviewData{
		Title:      req.Title,
		Subject:    placeholder.Render(req.Subject, req.Values),
		Preheader:  placeholder.Render(req.Preheader, req.Values),
		Document:   res.HTML,
		Variables:  res.Variables,
		Unresolved: res.Unresolved,
		Warnings:   insp.Warnings,
	})
}

// PostPreviewFrame renders a saved post in the preview page with its
// stored values.
func (a *API) PostPreviewFrame(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	in := engine.PreviewInput{
		Format: p.Format,
		Source: p.HTMLContent,
		Blocks: p.Blocks,
		Values: p.VariableValues,
	}
	res, insp, ok := a.preview(w, r, in)
	if !ok {
		return
	}
	a.writeFrame(w, r, &render.PreviewData{
		Title:      p.Title,
		Subject:    placeholder.Render(p.Subject, p.VariableValues),
		Preheader:  placeholder.Render(p.Preheader, p.VariableValues),
		Document:   res.HTML,
		Variables:  res.Variables,
		Unresolved: res.Unresolved,
		Warnings:   insp.Warnings,
	})
}

// Inspect lists the images and links of an HTML document.
func (a *API) Inspect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML string `json:"html"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	insp, err := engine.Inspect(req.HTML)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, insp)
}

// preview runs the engine and the inspector, writing an error response on
// failure.
func (a *API) preview(w http.ResponseWriter, r *http.Request, in engine.PreviewInput) (*engine.Result, *engine.Inspection, bool) {
	if in.Format == "" {
		in.Format = models.PostFormatHTML
	}
	if msg := validateValues(in.Values); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return nil, nil, false
	}
	res, err := a.engine.Preview(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil, nil, false
	}
	insp, err := engine.Inspect(res.HTML)
	if err != nil {
		serverError(w, "inspect preview failed", err)
		return nil, nil, false
	}
	return res, insp, true
}

func (a *API) writeFrame(w http.ResponseWriter, r *http.Request, data *render.PreviewData) {
	if a.renderer == nil {
		writeError(w, http.StatusServiceUnavailable, "preview renderer is not configured")
		return
	}
	a.renderer.Preview(w, data)
}
