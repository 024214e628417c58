package graphqlapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
)

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves POST /graphql. The endpoint itself is open; the gate has
// already populated identity on the request context and each resolver
// enforces its own operation rule, so denials arrive as GraphQL errors with
// a code in extensions rather than as transport-level statuses.
func Handler(schema graphql.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req graphqlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "invalid json"}},
			})
			return
		}
		if req.Query == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "query is required"}},
			})
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        c.Request.Context(),
		})
		c.JSON(http.StatusOK, result)
	}
}
