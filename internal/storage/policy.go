package storage

import (
	"fmt"
	"strings"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// UploadPolicy limits what may be uploaded for one kind of file
type UploadPolicy struct {
	MaxBytes          int64
	AllowedExtensions []string
}

// AvatarPolicy accepts images up to 1 MB
var AvatarPolicy = UploadPolicy{
	MaxBytes:          utils.MustBytes(constants.AvatarMaxSizeMB, "mb"),
	AllowedExtensions: constants.AvatarExtensions,
}

// DocumentPolicy accepts office documents up to 5 MB
var DocumentPolicy = UploadPolicy{
	MaxBytes:          utils.MustBytes(constants.DocumentMaxSizeMB, "mb"),
	AllowedExtensions: constants.DocumentExtensions,
}

// Check validates the name and size of an upload.
//
// Returns:
//   - nil when the file is acceptable
//   - A 400 AppError naming the violated limit otherwise
func (p UploadPolicy) Check(filename string, size int64) error {
	if p.MaxBytes > 0 && size > p.MaxBytes {
		return utils.NewBadRequestError(constants.MsgFileTooLarge)
	}

	if !utils.ContainsString(p.AllowedExtensions, utils.FileExtension(filename)) {
		return utils.NewBadRequestError(fmt.Sprintf(constants.MsgInvalidFileType, strings.Join(p.AllowedExtensions, ", ")))
	}

	return nil
}
