package smtp

import (
	"errors"
	"net/textproto"
	"strings"
)

// crlfRejected текст ошибки net/smtp для строк с CR или LF.
const crlfRejected = "must not contain CR or LF"

// IsPermanent сообщает, что повторная отправка не поможет: сервер ответил 5xx
// или адрес содержит CR/LF.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 500
	}
	return strings.Contains(err.Error(), crlfRejected)
}
