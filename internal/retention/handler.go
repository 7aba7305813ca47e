package retention

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hr-analytics/internal/shared/metrics"
	"hr-analytics/internal/shared/server/respond"
)

type Handler struct {
	Predictor *Predictor
}

func NewHandler(p *Predictor) *Handler {
	return &Handler{Predictor: p}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/predict", h.predict)
}

func (h *Handler) predict(c *gin.Context) {
	data, err := decodeRecord(c.Request.Body)
	if err != nil {
		metrics.IncPrediction("error")
		respond.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.Predictor.Predict(c.Request.Context(), data)
	if err != nil {
		metrics.IncPrediction("error")
		respond.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.IncPrediction("ok")
	c.Set("prediction", map[string]any{"label": result.Prediction, "probability": result.Probability})
	respond.OK(c, result)
}

// decodeRecord keeps numbers as json.Number so employee_data echoes them unchanged.
func decodeRecord(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("request body must be a JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return data, nil
}
