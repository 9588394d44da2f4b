package services

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/types"
	"gorm.io/gorm"
)

func storageDir() string {
	if dir := os.Getenv("FILE_STORAGE_DIR"); dir != "" {
		return dir
	}
	return "uploads"
}

// AttachTaskFile stores an uploaded file on disk under a generated name and
// records its metadata. Any member of the project may attach files.
func AttachTaskFile(gdb *gorm.DB, taskID uint, fileName, contentType string, src io.Reader, actor models.User) (models.TaskFile, error) {
	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return models.TaskFile{}, NotFound("Task not found")
	}

	if _, ok := RoleOf(gdb, actor, task.ProjectID); !ok {
		return models.TaskFile{}, Forbidden("You are not a member of this project")
	}

	if fileName == "" {
		return models.TaskFile{}, BadRequest("File name is required")
	}

	storedName := uuid.NewString() + filepath.Ext(fileName)

	if err := os.MkdirAll(storageDir(), 0o755); err != nil {
		return models.TaskFile{}, err
	}

	path := filepath.Join(storageDir(), storedName)

	dst, err := os.Create(path)
	if err != nil {
		return models.TaskFile{}, err
	}

	size, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(path)
		return models.TaskFile{}, err
	}

	file := models.TaskFile{
		TaskID:      task.ID,
		UserID:      actor.ID,
		FileName:    fileName,
		StoredName:  storedName,
		ContentType: contentType,
		Size:        size,
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}

		return recordHistory(tx, task.ID, actor.ID, types.HistoryFileAttached, map[string]interface{}{
			"file_name": fileName,
		})
	})

	if err != nil {
		os.Remove(path)
		return models.TaskFile{}, err
	}

	return file, nil
}

// DeleteTaskFile: the uploader or a PM may remove a file. The disk copy is
// removed best-effort after the row is gone.
func DeleteTaskFile(gdb *gorm.DB, fileID uint, actor models.User) error {
	var file models.TaskFile

	if err := gdb.Preload("Task").First(&file, fileID).Error; err != nil {
		return NotFound("File not found")
	}

	if file.UserID != actor.ID && !IsProjectManager(gdb, actor, file.Task.ProjectID) {
		return Forbidden("Only the uploader or a project manager can delete the file")
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&file).Error; err != nil {
			return err
		}

		return recordHistory(tx, file.TaskID, actor.ID, types.HistoryFileRemoved, map[string]interface{}{
			"file_name": file.FileName,
		})
	})

	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(storageDir(), file.StoredName)); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove stored file %s: %v", file.StoredName, err)
	}

	return nil
}

func ListTaskFiles(gdb *gorm.DB, taskID uint, actor models.User) ([]models.TaskFile, error) {
	var task models.Task

	if err := gdb.First(&task, taskID).Error; err != nil {
		return nil, NotFound("Task not found")
	}

	if _, ok := RoleOf(gdb, actor, task.ProjectID); !ok {
		return nil, Forbidden("You are not a member of this project")
	}

	var files []models.TaskFile

	if err := gdb.Where("task_id = ?", task.ID).Order("created_at").Find(&files).Error; err != nil {
		return nil, err
	}

	return files, nil
}
