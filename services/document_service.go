package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"claims_crm_go/models"

	"gorm.io/gorm"
)

// MaxUploadSize is the largest document accepted, in bytes
const MaxUploadSize = 10 * 1024 * 1024

// DocumentUpdate holds the editable metadata of a document
type DocumentUpdate struct {
	ClientVisible string  `json:"visibile_cliente"`
	Description   *string `json:"descrizione"`
}

// DocumentDownload is an open document stream. The caller closes Reader.
type DocumentDownload struct {
	Document *models.Document
	Reader   io.ReadCloser
	FileName string
	MimeType string
	Size     int64
}

// detectMimeType sniffs the first bytes of a file, falling back to the
// extension when the content is not recognized.
func detectMimeType(head []byte, filename string) string {
	mimeType := http.DetectContentType(head)
	if mimeType == "application/octet-stream" || strings.HasPrefix(mimeType, "text/plain") {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			return byExt
		}
	}
	return mimeType
}

// UploadDocument stores a file and records it on the practice. The file is
// written first; if the row cannot be inserted the file is removed again.
func UploadDocument(ctx context.Context, db *gorm.DB, store StorageProvider, practiceID string, file *multipart.FileHeader, visibility, description string) (*models.Document, error) {
	if file == nil || file.Filename == "" {
		return nil, ErrInvalidUpload
	}

	var practice models.Practice
	if err := db.Select("id").Where("id = ?", practiceID).First(&practice).Error; err != nil {
		return nil, dbError("find practice", err, ErrPracticeNotFound)
	}

	if file.Size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, ErrInvalidUpload.WithCause(err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, ErrInvalidUpload.WithCause(err)
	}
	head = head[:n]

	originalName := SanitizeText(filepath.Base(file.Filename))
	mimeType := detectMimeType(head, originalName)
	key := GenerateDocumentKey(practiceID, originalName)

	body := io.MultiReader(bytes.NewReader(head), src)
	stored, err := store.UploadReader(ctx, body, key, mimeType, file.Size)
	if err != nil {
		return nil, StorageError("upload document", err)
	}

	doc := &models.Document{
		PracticeID:    practiceID,
		FileName:      stored.FileName,
		OriginalName:  originalName,
		MimeType:      mimeType,
		Size:          stored.FileSize,
		StorageKey:    stored.Key,
		ClientVisible: NormalizeYesNo(visibility, models.FlagYes),
		Description:   SanitizeOptional(&description),
	}

	if err := db.Create(doc).Error; err != nil {
		if delErr := store.Delete(ctx, stored.Key); delErr != nil {
			log.Printf("[STORAGE] Failed to remove orphaned file %s: %v", stored.Key, delErr)
		}
		return nil, PersistenceError("create document", err)
	}

	log.Printf("[STORAGE] Stored %s for practice %s on %s (%d bytes)", stored.Key, practiceID, store.Name(), stored.FileSize)
	return doc, nil
}

// ListDocumentsByPractice returns a practice's documents, newest first
func ListDocumentsByPractice(db *gorm.DB, practiceID string, clientVisibleOnly bool) ([]models.Document, error) {
	query := db.Where("practice_id = ?", practiceID)
	if clientVisibleOnly {
		query = query.Where("client_visible = ?", models.FlagYes)
	}

	var docs []models.Document
	if err := query.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, PersistenceError("list practice documents", err)
	}
	return docs, nil
}

// GetDocument returns a document with its owning client and contract number
func GetDocument(db *gorm.DB, id string) (*models.Document, error) {
	var doc models.Document
	if err := db.Preload("Practice.Client").Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, dbError("get document", err, ErrDocumentNotFound)
	}
	doc.Flatten()
	return &doc, nil
}

// DownloadDocument opens a document for the principal. Clients only reach
// visible documents of their own practices.
func DownloadDocument(ctx context.Context, db *gorm.DB, store StorageProvider, id string, principal models.Principal) (*DocumentDownload, error) {
	doc, err := GetDocument(db, id)
	if err != nil {
		return nil, err
	}
	if err := CanDownload(principal, doc); err != nil {
		return nil, err
	}

	reader, info, err := store.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			log.Printf("[STORAGE] Document %s points at missing object %s", doc.ID, doc.StorageKey)
			return nil, ErrFileMissing
		}
		return nil, StorageError("download document", err)
	}

	dl := &DocumentDownload{
		Document: doc,
		Reader:   reader,
		FileName: doc.OriginalName,
		MimeType: doc.MimeType,
		Size:     info.Size,
	}
	if dl.MimeType == "" {
		dl.MimeType = info.ContentType
	}
	if dl.MimeType == "" {
		dl.MimeType = "application/octet-stream"
	}
	return dl, nil
}

// UpdateDocument changes visibility and description of a document
func UpdateDocument(db *gorm.DB, id string, input DocumentUpdate) (*models.Document, error) {
	doc, err := GetDocument(db, id)
	if err != nil {
		return nil, err
	}

	doc.ClientVisible = NormalizeYesNo(input.ClientVisible, models.FlagYes)
	doc.Description = SanitizeOptional(input.Description)

	err = db.Model(doc).Select("client_visible", "description", "updated_at").Updates(doc).Error
	if err != nil {
		return nil, PersistenceError("update document", err)
	}
	return doc, nil
}

// DeleteDocument removes the row, then the stored file. A file that cannot
// be removed is logged and left behind.
func DeleteDocument(ctx context.Context, db *gorm.DB, store StorageProvider, id string) (*models.Document, error) {
	doc, err := GetDocument(db, id)
	if err != nil {
		return nil, err
	}

	res := db.Where("id = ?", doc.ID).Delete(&models.Document{})
	if res.Error != nil {
		return nil, PersistenceError("delete document", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrDocumentNotFound
	}

	if err := store.Delete(ctx, doc.StorageKey); err != nil {
		log.Printf("[STORAGE] Warning: failed to delete file %s: %v", doc.StorageKey, err)
	}
	return doc, nil
}

// documentListScope joins the owning practice and client so lists can be
// filtered on them
func documentListScope(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Document{}).
		Joins("JOIN practices ON practices.id = documents.practice_id").
		Joins("JOIN clients ON clients.id = practices.client_id")
}

func flattenDocuments(docs []models.Document) {
	for i := range docs {
		docs[i].Flatten()
	}
}

// ListClientDocuments returns every visible document across a client's
// practices, newest first.
func ListClientDocuments(db *gorm.DB, clientID string) ([]models.Document, error) {
	var docs []models.Document
	err := db.Scopes(documentListScope).
		Select("documents.*").
		Preload("Practice").
		Where("practices.client_id = ? AND documents.client_visible = ?", clientID, models.FlagYes).
		Order("documents.created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, PersistenceError("list client documents", err)
	}
	flattenDocuments(docs)
	return docs, nil
}

// ListAllDocuments returns a page of all documents for the admin portal
func ListAllDocuments(db *gorm.DB, page Pagination, search string) ([]models.Document, int64, error) {
	search = strings.TrimSpace(search)
	filter := func(q *gorm.DB) *gorm.DB {
		q = documentListScope(q)
		if search != "" {
			like := likePattern(search)
			q = q.Where("documents.original_name LIKE ? OR documents.description LIKE ? OR clients.full_name LIKE ? OR practices.contract_number LIKE ?",
				like, like, like, like)
		}
		return q
	}

	var total int64
	if err := db.Model(&models.Document{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, PersistenceError("count documents", err)
	}

	var docs []models.Document
	err := db.Scopes(filter).
		Select("documents.*").
		Preload("Practice.Client").
		Order("documents.created_at DESC").
		Offset(page.Offset()).Limit(page.PageSize).
		Find(&docs).Error
	if err != nil {
		return nil, 0, PersistenceError("list documents", err)
	}
	flattenDocuments(docs)
	return docs, total, nil
}
