package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livestock-ledger/internal/router"
)

const (
	userID = "user-1"
	orgID  = "org-1"
)

func TestHTTP_EndToEnd_SaleDeathAndAnalytics(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	// 1) Alta de animal
	animalID := createAnimal(t, ts.URL, "A-001", "female")

	// 2) Venta
	var saleID string
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/"+animalID+"/sales", userID, map[string]any{
			"price":  "1500.50",
			"soldTo": "Feria",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record sale, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == "" || resp.Status != "ACTIVE" {
			t.Fatalf("unexpected sale body=%s", string(body))
		}
		saleID = resp.ID
	}

	// 3) Segunda venta sobre el mismo animal => 409
	{
		st, body := doReq(t, ts.URL, "POST", "/animals/"+animalID+"/sales", userID, map[string]any{})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 second sale, got %d body=%s", st, string(body))
		}
	}

	// 4) El animal quedó SOLD
	if got := animalStatus(t, ts.URL, animalID); got != "SOLD" {
		t.Fatalf("expected SOLD, got %s", got)
	}

	// 5) Cambio a DEAD: registra muerte y anula la venta
	{
		st, body := doReq(t, ts.URL, "PATCH", "/sales/"+saleID+"/status", userID, map[string]any{
			"status": "DEAD",
		})
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 status DEAD, got %d body=%s", st, string(body))
		}
	}
	if got := animalStatus(t, ts.URL, animalID); got != "DEAD" {
		t.Fatalf("expected DEAD, got %s", got)
	}

	// 6) Una fila de muerte
	{
		st, body := doReq(t, ts.URL, "GET", "/deaths?animalId="+animalID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list deaths, got %d body=%s", st, string(body))
		}
		var rows []struct {
			Number int `json:"number"`
			Female int `json:"female"`
		}
		_ = json.Unmarshal(body, &rows)
		if len(rows) != 1 || rows[0].Number != 1 || rows[0].Female != 1 {
			t.Fatalf("unexpected deaths body=%s", string(body))
		}
	}

	// 7) La venta anulada no aparece en el listado por defecto
	{
		st, body := doReq(t, ts.URL, "GET", "/sales?animalId="+animalID, userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list sales, got %d body=%s", st, string(body))
		}
		var rows []map[string]any
		_ = json.Unmarshal(body, &rows)
		if len(rows) != 0 {
			t.Fatalf("expected no live sales, body=%s", string(body))
		}
	}

	// 8) Serie anual de muertes: 12 meses, total 1
	{
		year := time.Now().UTC().Year()
		st, body := doReq(t, ts.URL, "GET", fmt.Sprintf("/analytics/deaths?year=%d", year), userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 analytics, got %d body=%s", st, string(body))
		}
		var resp struct {
			Granularity string `json:"granularity"`
			Series      []struct {
				Buckets []struct {
					Count int `json:"count"`
				} `json:"buckets"`
			} `json:"series"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Granularity != "month" || len(resp.Series) != 1 || len(resp.Series[0].Buckets) != 12 {
			t.Fatalf("unexpected analytics body=%s", string(body))
		}
		total := 0
		for _, b := range resp.Series[0].Buckets {
			total += b.Count
		}
		if total != 1 {
			t.Fatalf("expected 1 death in series, got %d", total)
		}
	}
}

func TestHTTP_BulkSale_AllOrNothing(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	a := createAnimal(t, ts.URL, "B-001", "male")
	createAnimal(t, ts.URL, "B-002", "female")

	// código inexistente => nada se vende
	st, body := doReq(t, ts.URL, "POST", "/sales/bulk", userID, map[string]any{
		"codes": []string{"B-001", "B-999"},
	})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 bulk with unknown code, got %d body=%s", st, string(body))
	}
	if got := animalStatus(t, ts.URL, a); got != "ACTIVE" {
		t.Fatalf("expected ACTIVE after failed bulk, got %s", got)
	}

	st, body = doReq(t, ts.URL, "POST", "/sales/bulk", userID, map[string]any{
		"codes": []string{"B-001", "B-002"},
		"date":  "2024-03-10",
		"price": "200",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 bulk sale, got %d body=%s", st, string(body))
	}
	var sales []map[string]any
	_ = json.Unmarshal(body, &sales)
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, body=%s", string(body))
	}
}

func TestHTTP_RequiresUser(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "GET", "/animals", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", st)
	}
}

func TestHTTP_Analytics_RejectsBadPeriod(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	for _, path := range []string{
		// sin período
		"/analytics/deaths",
		"/analytics/deaths?year=2024&months=13",
		"/analytics/deaths?periode=-1",
		"/analytics/deaths?year=2024&months=0",
		"/analytics/deaths?periode=0&year=2024",
		"/analytics/deaths?year=abc",
		"/analytics/unknown?year=2024",
	} {
		st, body := doReq(t, ts.URL, "GET", path, userID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", path, st, string(body))
		}
	}
}

func TestHTTP_MetricsExposeLifecycleOutcomes(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	a := createAnimal(t, ts.URL, "M-001", "")
	doReq(t, ts.URL, "POST", "/animals/"+a+"/sales", userID, map[string]any{})
	doReq(t, ts.URL, "POST", "/animals/"+a+"/sales", userID, map[string]any{})

	st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	for _, want := range []string{
		`livestock_lifecycle_operations_total{operation="record_sale",outcome="ok"} 1`,
		`livestock_lifecycle_operations_total{operation="record_sale",outcome="conflict"} 1`,
	} {
		if !bytes.Contains(body, []byte(want)) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestHTTP_SwaggerServesRegisteredDoc(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 swagger doc, got %d", st)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		SecurityDefinitions map[string]any `json:"securityDefinitions"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("swagger doc is not json: %v body=%s", err, string(body))
	}
	if doc.Info.Title != "Livestock Ledger API" || doc.SecurityDefinitions["BearerAuth"] == nil {
		t.Fatalf("unexpected swagger doc body=%s", string(body))
	}
}

func createAnimal(t *testing.T, baseURL, code, gender string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/animals", userID, map[string]any{
		"code":         code,
		"animalTypeId": "cow",
		"gender":       gender,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create animal, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create animal: missing id body=%s", string(body))
	}
	return resp.ID
}

func animalStatus(t *testing.T, baseURL, id string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/animals/"+id, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get animal, got %d body=%s", st, string(body))
	}
	var resp struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.Status
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
		req.Header.Set("X-Debug-Organization-ID", orgID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}
