package retention

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, chat *stubChat) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := LoadModel("testdata/model.json")
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	router := gin.New()
	NewHandler(NewPredictor(m, ChatAdvisor{Client: chat})).RegisterRoutes(router)
	return router
}

func TestPredictReturnsPredictionAndEchoesInput(t *testing.T) {
	router := newTestRouter(t, &stubChat{out: "Keep them engaged."})

	body := `{"satisfaction_level":0.11,"last_evaluation":0.88,"number_project":5,"average_monthly_hours":272,"time_spend_company":4,"work_accident":0,"promotion_last_5years":0,"department":"sales","salary":"medium"}`
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got struct {
		Prediction      int             `json:"prediction"`
		Probability     float64         `json:"probability"`
		Recommendations string          `json:"recommendations"`
		EmployeeData    json.RawMessage `json:"employee_data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Prediction != 1 || got.Probability < 0 || got.Probability > 1 {
		t.Fatalf("unexpected prediction %+v", got)
	}
	if got.Recommendations != "Keep them engaged." {
		t.Fatalf("unexpected recommendations %q", got.Recommendations)
	}
	if !strings.Contains(string(got.EmployeeData), `"number_project":5`) {
		t.Fatalf("expected employee_data echo, got %s", got.EmployeeData)
	}
}

func TestPredictConversionFailure(t *testing.T) {
	router := newTestRouter(t, &stubChat{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"satisfaction_level":"abc"}`)))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if got := strings.TrimSpace(resp.Body.String()); got != `{"error":"could not convert string to float: 'abc'"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestPredictRejectsNonObjectBody(t *testing.T) {
	router := newTestRouter(t, &stubChat{})

	for _, body := range []string{"", "[1,2]", "null"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("body %q: expected 500, got %d", body, resp.Code)
		}
	}
}
