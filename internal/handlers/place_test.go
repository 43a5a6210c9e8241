package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"waypoint/internal/middleware"
	"waypoint/internal/models"

	"github.com/gin-gonic/gin"
)

func newPlaceRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.CheckUserKey, user)
		})
	}

	h := NewPlaceHandler()
	r.POST("/places", h.Create)
	r.GET("/places/:pid", h.Detail)
	r.GET("/places/:pid/comments", h.ListComments)
	r.POST("/places/:pid/comments", h.CreateComment)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPlaceCreate(t *testing.T) {
	g := newTestDB(t)
	user := seedUser(t, g, "crew@test.io")
	city := seedCity(t, g)

	r := newPlaceRouter(user)

	body := fmt.Sprintf(`{"city_id": %d, "name": "Cafe do Porto", "category": "food"}`, city.ID)
	w := postJSON(t, r, "/places", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var place models.Place
	if err := json.Unmarshal(w.Body.Bytes(), &place); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if place.Pid == "" || place.Name != "Cafe do Porto" {
		t.Errorf("unexpected place %+v", place)
	}

	if w := postJSON(t, r, "/places", fmt.Sprintf(`{"city_id": %d, "name": "  "}`, city.ID)); w.Code != http.StatusBadRequest {
		t.Errorf("blank name: expected 400, got %d", w.Code)
	}
	if w := postJSON(t, r, "/places", `{"city_id": 9999, "name": "Nowhere Bar"}`); w.Code != http.StatusNotFound {
		t.Errorf("missing city: expected 404, got %d", w.Code)
	}
}

func TestPlaceCreateComment(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	reviewer := seedUser(t, g, "reviewer@test.io")
	place := seedPlace(t, g, owner)

	r := newPlaceRouter(reviewer)

	w := postJSON(t, r, "/places/"+place.Pid+"/comments", `{"text": "Good coffee, loud music", "rating": 4}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Rating      float64 `json:"rating"`
		RatingCount int     `json:"rating_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Rating != 4.0 || resp.RatingCount != 1 {
		t.Errorf("got rating=%.2f count=%d, want 4.0/1", resp.Rating, resp.RatingCount)
	}

	if w := postJSON(t, r, "/places/"+place.Pid+"/comments", `{"text": "", "rating": 4}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty text: expected 400, got %d", w.Code)
	}
	if w := postJSON(t, r, "/places/"+place.Pid+"/comments", `{"text": "hi", "rating": 9}`); w.Code != http.StatusBadRequest {
		t.Errorf("rating 9: expected 400, got %d", w.Code)
	}
	if w := postJSON(t, r, "/places/nope1234/comments", `{"text": "hi", "rating": 3}`); w.Code != http.StatusNotFound {
		t.Errorf("missing place: expected 404, got %d", w.Code)
	}

	// Comment shows up in the listing
	req := httptest.NewRequest("GET", "/places/"+place.Pid+"/comments", nil)
	lw := httptest.NewRecorder()
	r.ServeHTTP(lw, req)
	if lw.Code != http.StatusOK {
		t.Fatalf("list comments: expected 200, got %d", lw.Code)
	}
	var comments []models.Comment
	if err := json.Unmarshal(lw.Body.Bytes(), &comments); err != nil {
		t.Fatalf("decode comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Rating != 4 {
		t.Errorf("unexpected comments %+v", comments)
	}
}

func TestPlaceDetail(t *testing.T) {
	g := newTestDB(t)
	owner := seedUser(t, g, "owner@test.io")
	place := seedPlace(t, g, owner)

	r := newPlaceRouter(nil)

	req := httptest.NewRequest("GET", "/places/"+place.Pid, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/places/missing99", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing place: expected 404, got %d", w.Code)
	}
}
