package dto

import "github.com/gin-gonic/gin"

func stringField() gin.H { return gin.H{"type": "string", "minLength": 1} }

func member(props gin.H, required ...string) gin.H {
	return gin.H{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// JobCallSchema is the JSON schema of JobCallRequest served by GET /api/job.
var JobCallSchema = gin.H{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title":   "JobCallRequest",
	"type":    "object",
	"oneOf": []gin.H{
		{"required": []string{"consumeJob"}},
		{"required": []string{"reactiveJob"}},
		{"required": []string{"updateStatusJob"}},
	},
	"properties": gin.H{
		"consumeJob": member(gin.H{
			"workflowId": stringField(),
		}, "workflowId"),
		"reactiveJob": member(gin.H{
			"workflowId": stringField(),
			"jobId":      stringField(),
		}, "workflowId", "jobId"),
		"updateStatusJob": member(gin.H{
			"workflowId": stringField(),
			"jobId":      stringField(),
			"status": gin.H{
				"type": "string",
				"enum": []string{"pending", "success", "rejected"},
			},
		}, "workflowId", "jobId", "status"),
	},
	"additionalProperties": false,
}
