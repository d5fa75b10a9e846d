package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/info-321/React-Email-Dashboard/pkg/errutil"
)

type errorBody struct {
	Error string `json:"error"`
}

// ReturnServerResponse writes res as JSON on success, or an {"error": ...}
// body with the status code carried by resErr.
func ReturnServerResponse(w http.ResponseWriter, res interface{}, resErr error) {
	code, errMsg := errutil.ParseHttpError(resErr)

	var payload interface{}
	if resErr != nil {
		payload = &errorBody{Error: errMsg}
	} else if res != nil {
		payload = res
	} else {
		payload = struct{}{}
	}

	js, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(js); err != nil {
		fmt.Printf("fail to return server response, err: %v\n", err)
	}
}

// ReturnFileDownload streams raw bytes as a browser file download.
func ReturnFileDownload(w http.ResponseWriter, filename, mimeType string, data []byte) {
	if filename == "" {
		filename = "attachment"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		fmt.Printf("fail to stream file download, err: %v\n", err)
	}
}
