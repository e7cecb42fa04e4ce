package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/bmi-service/internal/application"
)

// BMIIndex writes measurement documents keyed by record id, so redelivered
// events overwrite instead of duplicating.
type BMIIndex struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
}

func NewBMIIndex(es *elasticsearch.Client, index string) *BMIIndex {
	return &BMIIndex{ES: es, Index: index, Timeout: 3 * time.Second}
}

type bmiDocument struct {
	ID      int64   `json:"id"`
	Weight  int     `json:"weight"`
	Height  int     `json:"height"`
	BMI     float64 `json:"bmi"`
	Status  string  `json:"status"`
	BMIDate string  `json:"bmi_date"`
	Name    string  `json:"name,omitempty"`
	UserID  int64   `json:"user_id,omitempty"`
}

func toDocument(evt application.BMIEvent) bmiDocument {
	return bmiDocument{
		ID:      evt.ID,
		Weight:  evt.Weight,
		Height:  evt.Height,
		BMI:     evt.BMIView.BMI,
		Status:  evt.Status,
		BMIDate: evt.BMIDate.UTC().Format(time.RFC3339Nano),
		Name:    evt.Name,
		UserID:  evt.UserID,
	}
}

func (x *BMIIndex) IndexBMI(ctx context.Context, evt application.BMIEvent) error {
	b, err := json.Marshal(toDocument(evt))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.Index,
		DocumentID: strconv.FormatInt(evt.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index response: %s", res.Status())
	}
	return nil
}

var _ application.BMIIndexer = (*BMIIndex)(nil)
