package gears

import (
	"github.com/angelmondragon/gearmarket-web/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
)

var userMessages = map[string]string{
	"TOO_MANY_IMAGES":       "이미지는 최대 10개까지 업로드할 수 있습니다.",
	"NO_VALID_IMAGES":       "유효한 이미지가 없습니다. 파일을 다시 확인해주세요.",
	"INVALID_TOKEN":         "로그인이 필요합니다.",
	"FORBIDDEN":             "본인 글만 수정할 수 있습니다.",
	"NOT_FOUND":             "게시글이 존재하지 않거나 삭제되었습니다.",
	"INTERNAL_SERVER_ERROR": "서버 오류로 수정에 실패했습니다.",
}

// UserMessage returns the display text for an upstream listing error code.
func UserMessage(code string) (string, bool) {
	msg, ok := userMessages[code]
	return msg, ok
}

// LocalizeError swaps the upstream's message for the known user-facing text, keeping
// the error code and chain intact.
func LocalizeError(err error) error {
	up, ok := apiclient.AsUpstream(err)
	if !ok {
		return err
	}
	msg, ok := UserMessage(up.Code)
	if !ok {
		return err
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	}
	wrapped := pkgerrors.Wrap(typed.Code(), err, msg)
	if typed.Details() != nil {
		wrapped = wrapped.WithDetails(typed.Details())
	}
	return wrapped
}
