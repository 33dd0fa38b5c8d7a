package pdf_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatzaot-app/quotes-api/internal/config"
	"github.com/hatzaot-app/quotes-api/internal/pdf"
)

func TestClient_RenderHTML(t *testing.T) {
	fakePDF := []byte("%PDF-1.7 fake")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "index.html", header.Filename)

		assert.Equal(t, "8.27", r.FormValue("paperWidth"))
		assert.Equal(t, "11.7", r.FormValue("paperHeight"))
		assert.Equal(t, "true", r.FormValue("printBackground"))

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(fakePDF)
	}))
	defer srv.Close()

	client := pdf.NewClient(&config.PDFConfig{GotenbergURL: srv.URL, Timeout: 5})

	out, err := client.RenderHTML(context.Background(), []byte(`<html dir="rtl"><body>הצעה</body></html>`))
	require.NoError(t, err)
	assert.Equal(t, fakePDF, out)
}

func TestClient_RenderHTML_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conversion failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := pdf.NewClient(&config.PDFConfig{GotenbergURL: srv.URL, Timeout: 5})

	_, err := client.RenderHTML(context.Background(), []byte("<html></html>"))
	assert.Error(t, err)
}
