package dynamo

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrKey(t *testing.T) {
	key := strKey("account_id", "acc1")
	require.Len(t, key, 1)
	member, ok := key["account_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "acc1", member.Value)
}

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{"verified": true})

	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", expr)
	assert.Equal(t, map[string]string{"#f0": "verified"}, names)
	require.Len(t, values, 1)
	b, ok := values[":v0"].(*types.AttributeValueMemberBOOL)
	require.True(t, ok)
	assert.True(t, b.Value)
}

func TestBuildUpdateExpr_MultipleFields(t *testing.T) {
	updates := map[string]interface{}{
		"name":     "A",
		"provider": "federated",
		"verified": true,
	}
	expr, names, values, err := buildUpdateExpr(updates)

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(expr, "SET "))
	assert.Len(t, names, 3)
	assert.Len(t, values, 3)
	// Every field ends up behind a placeholder, so reserved words like "name"
	// are safe to update.
	seen := map[string]bool{}
	for placeholder, field := range names {
		assert.Contains(t, expr, placeholder+" = :v"+strings.TrimPrefix(placeholder, "#f"))
		seen[field] = true
	}
	for field := range updates {
		assert.True(t, seen[field], "field %s missing from expression names", field)
	}
}

func TestBuildUpdateExpr_Empty(t *testing.T) {
	_, _, _, err := buildUpdateExpr(map[string]interface{}{})
	require.Error(t, err)
}

func TestIsConditionalCheckFailed(t *testing.T) {
	ccf := &types.ConditionalCheckFailedException{}
	assert.True(t, isConditionalCheckFailed(ccf))
	assert.True(t, isConditionalCheckFailed(fmt.Errorf("put item: %w", ccf)))
	assert.False(t, isConditionalCheckFailed(errors.New("throttled")))
	assert.False(t, isConditionalCheckFailed(nil))
}
