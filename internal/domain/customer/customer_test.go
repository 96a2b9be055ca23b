package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exoorder/backend/internal/domain/shared"
)

func validDraft() Draft {
	return Draft{Name: "王小明", NickName: "ming", Phone: "0912345678", Address: "台北市"}
}

func TestDraft_Validate(t *testing.T) {
	assert.NoError(t, validDraft().Validate())

	tests := []struct {
		name  string
		apply func(d *Draft)
		field string
	}{
		{"missing name", func(d *Draft) { d.Name = "" }, "name"},
		{"missing nickname", func(d *Draft) { d.NickName = "" }, "nick_name"},
		{"blank phone", func(d *Draft) { d.Phone = "   " }, "phone"},
		{"missing address", func(d *Draft) { d.Address = "" }, "address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.apply(&d)
			err := d.Validate()
			assert.True(t, shared.IsValidation(err))
			var de *shared.DomainError
			if assert.ErrorAs(t, err, &de) {
				assert.Equal(t, tt.field, de.Field)
			}
		})
	}
}

func TestNormalizeNickName(t *testing.T) {
	assert.Equal(t, "@ming", NormalizeNickName("ming"))
	assert.Equal(t, "@ming", NormalizeNickName("@ming"))
}

func TestDraft_ToPayload(t *testing.T) {
	p := validDraft().ToPayload()
	assert.Equal(t, Payload{Name: "王小明", NickName: "@ming", Phone: "0912345678", Address: "台北市"}, p)
}
