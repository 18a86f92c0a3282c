package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa-ai/internal/agent"
	vsmocks "docqa-ai/internal/vectorstore/mocks"
)

type stubWorkflow struct{}

func (stubWorkflow) Run(_ context.Context, _ string) (agent.Result, error) {
	return agent.Result{Answer: "ok", Verdict: agent.VerdictCanAnswer}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := vsmocks.NewMockVectorStore(ctrl)
	store.EXPECT().CollectionExists(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	return NewRouter(&Deps{
		Workflow:       stubWorkflow{},
		VectorStore:    store,
		CollectionName: "passages",
	})
}

func TestRouter_Routes(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"ask", http.MethodPost, "/api/ask", `{"question": "q"}`, http.StatusOK},
		{"health", http.MethodGet, "/api/health", "", http.StatusOK},
		{"unknown path", http.MethodGet, "/api/nope", "", http.StatusNotFound},
		{"ask wrong method", http.MethodGet, "/api/ask", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
