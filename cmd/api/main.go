// Command api serves the headless JSON API: the same pipeline as the
// UI without any figure, for scripted exploration.
package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lightlab/domain/core"
	"lightlab/domain/run"
	"lightlab/internal/config"
	"lightlab/internal/container"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	c, err := container.New(appConfig, nil)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer c.Close()

	router := gin.Default()
	registerRoutes(router, c)

	log.Printf("lightlab api listening on :%s", appConfig.Server.Port)
	if err := router.Run(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func registerRoutes(router *gin.Engine, c *container.Container) {
	api := router.Group("/api")

	api.GET("/identifiers", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.Service.Catalog().Identifiers())
	})

	api.GET("/resolve/:id", func(ctx *gin.Context) {
		id, err := core.ParseTargetID(ctx.Param("id"))
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res := c.Service.Catalog().Resolve(id)
		body := gin.H{"query": res.Query, "has_literature": res.HasLiterature}
		if res.HasLiterature {
			body["literature_period"] = res.LiteraturePeriod
		}
		ctx.JSON(http.StatusOK, body)
	})

	api.POST("/explore", func(ctx *gin.Context) {
		var req struct {
			Identifier  string  `json:"identifier" binding:"required"`
			TrialPeriod float64 `json:"trial_period"`
			BinSize     float64 `json:"bin_size"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.TrialPeriod == 0 {
			req.TrialPeriod = 5.0
		}
		if req.BinSize == 0 {
			req.BinSize = 0.02
		}

		res := c.Service.Explore(ctx.Request.Context(), run.Params{
			Identifier:  core.TargetID(req.Identifier),
			TrialPeriod: req.TrialPeriod,
			BinSize:     req.BinSize,
		})

		body := gin.H{
			"run_id":  res.ID.String(),
			"outcome": string(res.Outcome),
		}
		switch res.Outcome {
		case run.OutcomeFound:
			body["period_at_max_power"] = res.PeriodAtMaxPower
			body["max_power"] = res.Periodogram.MaxPower()
			body["samples"] = res.Raw.Len()
			if res.HasLiterature {
				body["literature_period"] = res.LiteraturePeriod
			}
			ctx.JSON(http.StatusOK, body)
		case run.OutcomeNotFound:
			ctx.JSON(http.StatusOK, body)
		default:
			body["error"] = res.Err.Error()
			ctx.JSON(http.StatusInternalServerError, body)
		}
	})

	api.GET("/runs", func(ctx *gin.Context) {
		records, err := c.Service.RecentRuns(ctx.Request.Context(), 20)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, records)
	})
}
