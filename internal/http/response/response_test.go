package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		pageSize int
		total    int64
		want     int64
	}{
		{20, 0, 0},
		{20, 20, 1},
		{20, 21, 2},
		{0, 5, 0},
	}
	for _, tc := range cases {
		if got := NewPagination(1, tc.pageSize, tc.total).TotalPage; got != tc.want {
			t.Fatalf("size=%d total=%d: total_page want %d got %d", tc.pageSize, tc.total, tc.want, got)
		}
	}
}

func TestErrorCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, CodeConflict, "out of stock")

	var body struct {
		StatusCode int                    `json:"status_code"`
		Msg        string                 `json:"msg"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if w.Code != 200 || body.StatusCode != CodeConflict || body.Msg != "out of stock" {
		t.Fatalf("unexpected envelope %d %+v", w.Code, body)
	}
	if body.Data["request_id"] != "req-1" {
		t.Fatalf("request id missing: %+v", body.Data)
	}
}

func TestSuccessOmitsPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Success(c, gin.H{"item_count": 3})

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, ok := raw["pagination"]; ok {
		t.Fatalf("plain success should not carry pagination")
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	SuccessWithPage(c, []int{}, NewPagination(2, 10, 11))
	raw = nil
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(raw["pagination"]) != `{"page":2,"page_size":10,"total":11,"total_page":2}` {
		t.Fatalf("unexpected pagination %s", raw["pagination"])
	}
}
