package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKindMarker(t *testing.T) {
	errFloor := NotFound("Tầng không tồn tại")
	errApt := NotFound("Căn hộ không tồn tại")

	assert.True(t, errors.Is(errFloor, ErrNotFound))
	assert.False(t, errors.Is(errFloor, ErrValidation))
	assert.False(t, errors.Is(errFloor, errApt), "sentinels with messages compare by identity")
	assert.True(t, errors.Is(errFloor, errFloor))
}

func TestError_Wrapped(t *testing.T) {
	base := Validation("Đánh giá phải từ 1 đến 5")
	wrapped := fmt.Errorf("create feedback: %w", base)

	assert.True(t, errors.Is(wrapped, base))
	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "forbidden", KindForbidden.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestValidationf(t *testing.T) {
	err := Validationf("Không thể chuyển trạng thái từ %s sang %s", "Completed", "Pending")
	assert.Equal(t, "Không thể chuyển trạng thái từ Completed sang Pending", err.Error())
	assert.Equal(t, KindValidation, err.Kind)
}
