//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the document QA engine over HTTP: document upload,
// query answering, and an SSE answer stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	docqa "trpc.group/trpc-go/trpc-docqa-go"
	"trpc.group/trpc-go/trpc-docqa-go/extractor"
	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/orchestrator"
)

// defaultMaxUploadBytes caps document uploads at 50 MiB.
const defaultMaxUploadBytes = 50 << 20

// shutdownTimeout bounds the graceful drain on Close.
const shutdownTimeout = 10 * time.Second

// Server is a thin HTTP surface over an Engine: request validation and
// response shaping only, no retrieval logic of its own.
type Server struct {
	engine *docqa.Engine
	router *mux.Router

	httpServer     *http.Server
	maxUploadBytes int64
}

// Option configures the Server instance.
type Option func(*Server)

// WithMaxUploadBytes overrides the document upload size limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// New creates an HTTP server around the given engine.
func New(engine *docqa.Engine, opts ...Option) *Server {
	s := &Server{
		engine:         engine,
		router:         mux.NewRouter(),
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until the listener fails or Close is called.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	log.Infof("document QA server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close drains in-flight requests and shuts the server down.
func (s *Server) Close() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/v1/documents", s.handleUpload).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/query", s.handleQuery).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/query/stream", s.handleQueryStream).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

type uploadResponse struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	Pages      int    `json:"pages"`
	Passages   int    `json:"passages"`
	Scanned    bool   `json:"scanned"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type questionResult struct {
	Question     string `json:"question"`
	Answer       string `json:"answer,omitempty"`
	PassageCount int    `json:"passage_count"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	Type         string `json:"type"`
}

type queryResponse struct {
	Answer        string           `json:"answer"`
	Questions     []questionResult `json:"questions"`
	Processed     int              `json:"processed"`
	Succeeded     int              `json:"succeeded"`
	TotalPassages int              `json:"total_passages"`
	ElapsedMs     int64            `json:"elapsed_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// handleUpload ingests one multipart document under the "file" form field.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("missing document file: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := s.engine.Ingest(r.Context(), file, header.Filename)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, uploadResponse{
		DocumentID: res.DocumentID,
		Name:       res.Name,
		Pages:      res.Pages,
		Passages:   res.Passages,
		Scanned:    res.Scanned,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	agg, err := s.engine.Answer(r.Context(), req.Query)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, toQueryResponse(agg))
}

// handleQueryStream streams the answer for ?q=... as server-sent events.
func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, err := s.engine.AnswerStream(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for delta := range ch {
		if delta.Err != nil {
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", jsonString(delta.Err.Error()))
			flusher.Flush()
			return
		}
		if delta.Text != "" {
			fmt.Fprintf(w, "data: %s\n\n", jsonString(delta.Text))
			flusher.Flush()
		}
		if delta.Done {
			fmt.Fprint(w, "data: [DONE]\n\n")
			flusher.Flush()
			return
		}
	}
}

// writeEngineError maps engine validation errors onto HTTP status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docqa.ErrEmptyQuery):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, docqa.ErrNoDocument):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, extractor.ErrNoText):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, docqa.ErrNoGenerator), errors.Is(err, docqa.ErrNoExtractor):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		log.Errorf("request failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toQueryResponse(agg *orchestrator.AggregatedResult) queryResponse {
	resp := queryResponse{
		Answer:        agg.Answer,
		Processed:     agg.Processed,
		Succeeded:     agg.Succeeded,
		TotalPassages: agg.TotalPassages,
		ElapsedMs:     agg.Elapsed.Milliseconds(),
	}
	for _, r := range agg.Results {
		resp.Questions = append(resp.Questions, questionResult{
			Question:     r.Question,
			Answer:       r.Answer,
			PassageCount: r.PassageCount,
			Success:      r.Success,
			Error:        r.Error,
			Type:         string(r.Type),
		})
	}
	return resp
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// jsonString renders s as a JSON string literal for SSE data lines.
func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
