// Package request вспомогательные функции разбора HTTP-запросов.
package request

import (
	"net/http"
	"strconv"
)

// Paging читает limit и offset из query. Некорректные значения дают 0,
// сервисы подставляют размер страницы по умолчанию.
func Paging(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 0 {
		limit = 0
	}
	offset, err = strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
