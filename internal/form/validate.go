package form

import (
	"regexp"
	"strings"
)

// DefaultCoverImage подставляется при создании трека без обложки
const DefaultCoverImage = "https://placehold.co/300x300?text=No+Cover"

var (
	// При создании обложка должна быть ссылкой на изображение известного формата
	createCoverPattern = regexp.MustCompile(`(?i)^https?://\S+\.(png|jpe?g|gif|webp)(\?\S*)?$`)
	// При редактировании проверяется только схема
	editCoverPattern = regexp.MustCompile(`(?i)^https?://\S+$`)
)

// ValidationError ошибка локальной проверки черновика
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Сообщения проверки
const (
	msgRequired    = "Название и исполнитель обязательны"
	msgCoverCreate = "Обложка должна быть ссылкой http(s) на изображение png, jpg, jpeg, gif или webp"
	msgCoverEdit   = "Обложка должна быть ссылкой http(s)"
)

// ValidateCreate проверяет черновик перед созданием трека
func ValidateCreate(d Draft) error {
	if err := validateRequired(d); err != nil {
		return err
	}
	cover := strings.TrimSpace(d.CoverImage)
	if cover != "" && !createCoverPattern.MatchString(cover) {
		return &ValidationError{Field: FieldCoverImage, Message: msgCoverCreate}
	}
	return nil
}

// ValidateEdit проверяет черновик перед изменением трека.
// Требование к расширению файла обложки здесь не действует.
func ValidateEdit(d Draft) error {
	if err := validateRequired(d); err != nil {
		return err
	}
	cover := strings.TrimSpace(d.CoverImage)
	if cover != "" && !editCoverPattern.MatchString(cover) {
		return &ValidationError{Field: FieldCoverImage, Message: msgCoverEdit}
	}
	return nil
}

func validateRequired(d Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: FieldTitle, Message: msgRequired}
	}
	if strings.TrimSpace(d.Artist) == "" {
		return &ValidationError{Field: FieldArtist, Message: msgRequired}
	}
	return nil
}
