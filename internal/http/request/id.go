package request

import "github.com/google/uuid"

const (
	// MsgInvalidID ответ на идентификатор в пути не в формате UUID.
	MsgInvalidID = "invalid id"
	// MsgInvalidUserID ответ на userId в теле не в формате UUID.
	MsgInvalidUserID = "userId must be a valid UUID"
)

// ValidID сообщает, что id это UUID в каноническом виде
// (36 символов с дефисами). Колонки идентификаторов в базе имеют тип uuid.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
