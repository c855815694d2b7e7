package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Created(c, gin.H{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	var ok Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	UnprocessableEntity(c, "NAMESPACE_EXHAUSTED", "no task numbers left")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var failed Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	assert.False(t, failed.Success)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "NAMESPACE_EXHAUSTED", failed.Error.Code)
}
