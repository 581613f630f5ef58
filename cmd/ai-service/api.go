// cmd/ai-service/api.go
package main

import (
	"encoding/json"
	"net/http"

	"agrimarket-ai/internal/capabilities/analysis"
	"agrimarket-ai/internal/capabilities/generation"
	"agrimarket-ai/internal/capabilities/image"
	"agrimarket-ai/internal/capabilities/intelligence"
	svcerrors "agrimarket-ai/internal/common/errors"
	"agrimarket-ai/internal/common/logger"
)

type apiDeps struct {
	generation   *generation.Handler
	image        *image.Handler
	analysis     *analysis.Handler
	intelligence *intelligence.Handler
	logger       logger.Logger
}

type apiServer struct {
	deps apiDeps
}

func newAPIServer(deps apiDeps) *apiServer {
	return &apiServer{deps: deps}
}

func (s *apiServer) register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/content/description", s.handleDescription)
	mux.HandleFunc("/v1/content/marketing-copy", s.handleMarketingCopy)
	mux.HandleFunc("/v1/images/resolve", s.handleImage)
	mux.HandleFunc("/v1/analysis", s.handleAnalysis)
	mux.HandleFunc("/v1/intelligence", s.handleIntelligence)
}

func (s *apiServer) handleDescription(w http.ResponseWriter, r *http.Request) {
	var req generation.DescriptionRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.deps.generation.GenerateDescription(r.Context(), req)
	s.respond(w, result, err)
}

func (s *apiServer) handleMarketingCopy(w http.ResponseWriter, r *http.Request) {
	var req generation.MarketingCopyRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.deps.generation.GenerateMarketingCopy(r.Context(), req)
	s.respond(w, result, err)
}

func (s *apiServer) handleImage(w http.ResponseWriter, r *http.Request) {
	var req image.ImageRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.deps.image.Resolve(r.Context(), req)
	s.respond(w, result, err)
}

func (s *apiServer) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysis.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.deps.analysis.Analyze(r.Context(), req)
	s.respond(w, result, err)
}

func (s *apiServer) handleIntelligence(w http.ResponseWriter, r *http.Request) {
	var req intelligence.IntelligenceRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.deps.intelligence.Report(r.Context(), req)
	s.respond(w, result, err)
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *apiServer) respond(w http.ResponseWriter, result interface{}, err error) {
	if err != nil {
		status := http.StatusBadGateway
		message := "upstream provider error"
		if svcErr, ok := err.(*svcerrors.ServiceError); ok {
			message = svcErr.Message
			if svcErr.Code == svcerrors.ErrCodeInvalidPayload {
				status = http.StatusBadRequest
			}
		}
		s.deps.logger.Warn("request failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, status, message)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
