package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/czConstant/constant-pawn-protocol/base/ptr"
)

func TestMakeBsonM(t *testing.T) {
	type PatchableLoan struct {
		Lender    *string `bson:"lender,omitempty"`
		StartedAt *int64  `bson:"startedAt,omitempty"`
		Status    string  `bson:"status"`
		Memo      string  `bson:"memo"`
	}

	patchable := &PatchableLoan{}
	patchable.Lender = ptr.String("")
	patchable.StartedAt = ptr.Int64(1650000000)
	patchable.Memo = "repaid early"

	updater, err := MakeBsonM(patchable)

	assert.NoError(t, err)
	assert.Equal(
		t,
		bson.M{
			// explicit pointer to zero value still patches
			"lender":    "",
			"startedAt": int64(1650000000),
			// field status is empty, so ignore
			"memo": "repaid early",
		},
		updater,
	)
}
