package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gorilla/mux"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/models"
)

type uploadDocumentReq struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"` // base64
}

type uploadDocumentResp struct {
	ObjectPath string `json:"objectPath"`
	PublicURL  string `json:"publicUrl"`
}

// UploadInspectionDocument stores a certificate or report against an
// inspection type's document folder in the bucket. The object lands
// under <folder>/<timestamp>_<filename>.
// POST /api/v1/inspection-types/{id}/documents
func UploadInspectionDocument(w http.ResponseWriter, r *http.Request) {
	typeID := mux.Vars(r)["id"]

	var inspType models.InspectionType
	if err := config.DB.First(&inspType, "id = ?", typeID).Error; err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	var req uploadDocumentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.FileName == "" || req.Data == "" {
		http.Error(w, "fileName and data are required", http.StatusBadRequest)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		http.Error(w, "data must be base64 encoded", http.StatusBadRequest)
		return
	}

	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		http.Error(w, "document storage is not configured (GCS_BUCKET missing)", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	client, err := storage.NewClient(ctx)
	if err != nil {
		http.Error(w, "failed to connect to document storage: "+err.Error(), http.StatusBadGateway)
		return
	}
	defer client.Close()

	folder := folderForType(&inspType)
	objectPath := path.Join(folder, fmt.Sprintf("%d_%s", time.Now().Unix(), path.Base(req.FileName)))

	obj := client.Bucket(bucketName).Object(objectPath)
	wr := obj.NewWriter(ctx)
	if req.ContentType != "" {
		wr.ContentType = req.ContentType
	}
	if _, err := wr.Write(data); err != nil {
		wr.Close()
		http.Error(w, "upload failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if err := wr.Close(); err != nil {
		// The common cause is a folder the service account cannot
		// write to. Tell the admin what to fix instead of a bare 500.
		http.Error(w,
			fmt.Sprintf("could not write to folder %q for %s. Check the folder exists and the service account has access: %v",
				folder, inspType.Name, err),
			http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(uploadDocumentResp{
		ObjectPath: objectPath,
		PublicURL:  fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectPath),
	})
}

// folderForType derives the bucket folder from the configured drive
// link, falling back to a slug of the type name.
func folderForType(t *models.InspectionType) string {
	if t.FolderURL != "" {
		trimmed := strings.TrimRight(t.FolderURL, "/")
		if i := strings.LastIndex(trimmed, "/"); i >= 0 && i < len(trimmed)-1 {
			return trimmed[i+1:]
		}
	}
	return strings.ToLower(strings.ReplaceAll(t.Name, " ", "_"))
}
