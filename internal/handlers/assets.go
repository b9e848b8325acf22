// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/skip2/go-qrcode"

	"mailcraft/internal/assist"
	"mailcraft/internal/imaging"
	"mailcraft/internal/models"
	"mailcraft/internal/storage"
)

const (
	// maxUploadSize is the largest accepted asset.
	maxUploadSize = 20 << 20

	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// ListAssets returns the asset library, newest first.
func (a *API) ListAssets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit < 0 || limit > 200 || offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid paging")
		return
	}
	items, err := a.assets.List(limit, offset)
	if err != nil {
		serverError(w, "list assets failed", err)
		return
	}
	if items == nil {
		items = []models.Asset{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetAsset returns one asset.
func (a *API) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, ok := a.loadAsset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// UploadAsset stores a multipart "file". Identical content is stored once:
// a second upload of the same bytes returns the existing asset with 200.
func (a *API) UploadAsset(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+64<<10)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file too large (max %d MB)", maxUploadSize>>20))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		serverError(w, "read upload failed", err)
		return
	}
	if len(data) > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file too large (max %d MB)", maxUploadSize>>20))
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return
	}

	ct := storage.DetectType(data)
	if !storage.Allowed(ct) {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("file type %q is not allowed", ct))
		return
	}

	alt := strings.TrimSpace(r.FormValue("alt_text"))
	if utf8.RuneCountInString(alt) > maxAltLen {
		writeError(w, http.StatusUnprocessableEntity, "alt text is too long")
		return
	}

	asset, created, err := a.storeAsset(r.Context(), data, ct, header.Filename, alt, models.AssetSourceUpload)
	if err != nil {
		serverError(w, "store asset failed", err, "name", header.Filename)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, asset)
}

// UpdateAssetAlt sets the alt text of an asset.
func (a *API) UpdateAssetAlt(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		AltText string `json:"alt_text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	alt := strings.TrimSpace(req.AltText)
	if utf8.RuneCountInString(alt) > maxAltLen {
		writeError(w, http.StatusUnprocessableEntity, "alt text is too long")
		return
	}
	if err := a.assets.UpdateAlt(id, alt); err != nil {
		storeError(w, "asset", err)
		return
	}
	asset, err := a.assets.FindByID(id)
	if err != nil || asset == nil {
		serverError(w, "reload asset failed", err, "asset", id)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// DeleteAsset removes an asset record and, best effort, its object.
func (a *API) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	asset, err := a.assets.Delete(id)
	if err != nil {
		serverError(w, "delete asset failed", err, "asset", id)
		return
	}
	if asset == nil {
		notFound(w, "asset")
		return
	}
	if a.storage != nil {
		if err := a.storage.Delete(r.Context(), asset.S3Key); err != nil {
			slog.Warn("delete asset object failed", "key", asset.S3Key, "error", err)
		}
	}
	slog.Info("asset deleted", "id", asset.ID, "key", asset.S3Key)
	w.WriteHeader(http.StatusNoContent)
}

// GenerateQR renders a QR code PNG for a URL and stores it as an asset.
func (a *API) GenerateQR(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	var req struct {
		URL  string `json:"url"`
		Size int    `json:"size"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if !govalidator.IsRequestURL(req.URL) {
		writeError(w, http.StatusUnprocessableEntity, "url must be an absolute http(s) URL")
		return
	}
	if req.Size == 0 {
		req.Size = defaultQRSize
	}
	if req.Size < minQRSize || req.Size > maxQRSize {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("size must be between %d and %d", minQRSize, maxQRSize))
		return
	}

	png, err := qrcode.Encode(req.URL, qrcode.Medium, req.Size)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("encode QR code: %v", err))
		return
	}
	asset, created, err := a.storeAsset(r.Context(), png, "image/png", "qr.png", "QR code for "+req.URL, models.AssetSourceQR)
	if err != nil {
		serverError(w, "store QR asset failed", err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, asset)
}

// GenerateImage asks the image-capable AI provider for an image and stores
// the result as an asset.
func (a *API) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	if a.ai == nil || !a.ai.SupportsImageGeneration() {
		writeError(w, http.StatusServiceUnavailable, "no AI provider can generate images")
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeError(w, http.StatusUnprocessableEntity, "prompt is required")
		return
	}

	ctx := r.Context()
	if res, err := a.ai.CheckPrompt(ctx, prompt); err != nil {
		slog.Warn("moderation check failed, allowing prompt", "error", err)
	} else if !res.Safe {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "prompt was flagged by moderation",
			"categories": res.Categories,
		})
		return
	}

	data, ct, err := a.ai.GenerateImage(ctx, prompt)
	if err != nil {
		slog.Error("image generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "image generation failed")
		return
	}
	if !storage.Allowed(ct) {
		ct = storage.DetectType(data)
	}
	if !storage.Allowed(ct) {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("provider returned unsupported type %q", ct))
		return
	}

	alt := prompt
	if utf8.RuneCountInString(alt) > maxAltLen {
		alt = string([]rune(alt)[:maxAltLen])
	}
	asset, _, err := a.storeAsset(ctx, data, ct, "generated"+storage.Ext(ct), alt, models.AssetSourceAI)
	if err != nil {
		serverError(w, "store generated image failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// SuggestAssetAlt asks the assistant to describe an image asset. With
// ?apply=true the suggestion is saved as the asset's alt text.
func (a *API) SuggestAssetAlt(w http.ResponseWriter, r *http.Request) {
	if a.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "AI assistance is not configured")
		return
	}
	asset, ok := a.loadAsset(w, r)
	if !ok {
		return
	}
	if !asset.IsImage() || asset.ContentType == "image/svg+xml" {
		writeError(w, http.StatusUnprocessableEntity, "alt text can only be suggested for raster images")
		return
	}

	out, err := a.assistant.Run(r.Context(), assist.TaskAltText, &assist.Input{
		Prompt:    r.URL.Query().Get("context"),
		ImageURLs: []string{asset.URL},
	})
	if err != nil {
		assistError(w, err)
		return
	}
	alt := out.Text
	if utf8.RuneCountInString(alt) > maxAltLen {
		alt = string([]rune(alt)[:maxAltLen])
	}
	if r.URL.Query().Get("apply") == "true" {
		if err := a.assets.UpdateAlt(asset.ID, alt); err != nil {
			storeError(w, "asset", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"alt_text": alt})
}

// storeAsset uploads data under its content address and records it. When
// the same bytes were stored before, the existing asset is returned and
// created is false.
func (a *API) storeAsset(ctx context.Context, data []byte, ct, name, alt string, source models.AssetSource) (*models.Asset, bool, error) {
	hash := storage.Hash(data)
	existing, err := a.assets.FindByHash(hash)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		slog.Info("asset deduplicated", "id", existing.ID, "hash", hash)
		return existing, false, nil
	}

	asset := &models.Asset{
		Hash:         hash,
		OriginalName: name,
		ContentType:  ct,
		SizeBytes:    int64(len(data)),
		AltText:      alt,
		Source:       source,
	}
	if asset.IsImage() && ct != "image/svg+xml" {
		if w, h, _, err := imaging.Probe(data); err == nil {
			asset.Width, asset.Height = w, h
		} else {
			slog.Warn("probe image failed", "name", name, "error", err)
		}
	}

	key := storage.Key(hash, ct)
	if err := a.storage.Put(ctx, key, ct, data); err != nil {
		return nil, false, fmt.Errorf("upload %s: %w", key, err)
	}
	asset.S3Key = key
	asset.URL = a.storage.URL(key)

	created, isNew, err := a.assets.Create(asset)
	if err != nil {
		return nil, false, err
	}
	if isNew {
		slog.Info("asset stored", "id", created.ID, "key", key, "type", ct, "size", len(data))
	}
	return created, isNew, nil
}

func (a *API) loadAsset(w http.ResponseWriter, r *http.Request) (*models.Asset, bool) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return nil, false
	}
	asset, err := a.assets.FindByID(id)
	if err != nil {
		serverError(w, "find asset failed", err, "asset", id)
		return nil, false
	}
	if asset == nil {
		notFound(w, "asset")
		return nil, false
	}
	return asset, true
}

