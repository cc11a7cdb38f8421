package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/xhad/tutor/internal/models"
	"github.com/xhad/tutor/pkg/rag"
	"github.com/xhad/tutor/pkg/registry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type Config struct {
	Addr string
}

// Server exposes the question answering chain and the document catalog over
// HTTP. Every failure inside a request is reported as an answer string; no
// handler surfaces an internal fault to the client.
type Server struct {
	config  Config
	chain   *rag.Chain
	catalog []models.DocumentInfo
}

func NewWithConfig(config Config, chain *rag.Chain, catalog []models.DocumentInfo) *Server {
	if config.Addr == "" {
		config.Addr = ":5001"
	}

	return &Server{
		config:  config,
		chain:   chain,
		catalog: catalog,
	}
}

type askRequest struct {
	Question  string `json:"question"`
	IndexName string `json:"index_name"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type pdfInfo struct {
	Filename    string `json:"filename"`
	IndexName   string `json:"index_name"`
	DisplayName string `json:"display_name"`
}

// Handler returns the route table as an http.Handler, usable directly in
// tests via httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/pdfs", s.handlePDFs)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

func (s *Server) ListenAndServe() error {
	log.Printf("Serving API on %s", s.config.Addr)
	return http.ListenAndServe(s.config.Addr, s.Handler())
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, askResponse{Answer: "Please ask a question."})
		return
	}

	question := strings.TrimSpace(req.Question)
	indexName := strings.TrimSpace(req.IndexName)

	if question == "" {
		writeJSON(w, http.StatusBadRequest, askResponse{Answer: "Please ask a question."})
		return
	}
	if indexName == "" {
		writeJSON(w, http.StatusBadRequest, askResponse{Answer: "Please select a PDF first."})
		return
	}

	answer := s.chain.AnswerQuestion(r.Context(), question, indexName)
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

func (s *Server) handlePDFs(w http.ResponseWriter, r *http.Request) {
	pdfs := make([]pdfInfo, 0, len(s.catalog))
	for _, doc := range s.catalog {
		pdfs = append(pdfs, pdfInfo{
			Filename:    doc.Filename,
			IndexName:   doc.IndexName,
			DisplayName: registry.TrimSourceExtension(doc.Filename),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pdfs":  pdfs,
		"count": len(pdfs),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"pdfs_loaded": len(s.catalog),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
		return
	}

	names := make([]string, 0, len(s.catalog))
	for _, doc := range s.catalog {
		names = append(names, doc.IndexName)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Tutor backend running",
		"pdfs_loaded":    len(s.catalog),
		"available_pdfs": names,
	})
}

type wsMessage struct {
	Question  string `json:"question"`
	IndexName string `json:"index_name"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Error reading message: %v", err)
			}
			return
		}

		question := strings.TrimSpace(msg.Question)
		indexName := strings.TrimSpace(msg.IndexName)

		var answer string
		switch {
		case question == "":
			answer = "Please ask a question."
		case indexName == "":
			answer = "Please select a PDF first."
		default:
			answer = s.chain.AnswerQuestion(r.Context(), question, indexName)
		}

		if err := conn.WriteJSON(askResponse{Answer: answer}); err != nil {
			log.Printf("Error sending message: %v", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
