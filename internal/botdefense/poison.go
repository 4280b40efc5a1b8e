package botdefense

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// serves plausible but worthless generation records to a scanner
func ServeDecoy(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"generations": fakeGenerations(rand.Intn(15) + 5), //nolint:gosec
	})
}

type fakeGeneration struct {
	ID                string `json:"id"`
	UserID            string `json:"userId"`
	Prompt            string `json:"prompt"`
	GeneratedImageURL string `json:"generatedImageUrl"`
	Resolution        string `json:"resolution"`
	CreatedAt         string `json:"createdAt"`
}

var (
	subjects = []string{"portrait", "headshot", "selfie", "wedding photo", "product shot", "pet photo"}
	looks    = []string{"vintage film", "studio lighting", "golden hour", "neon noir", "watercolor", "polaroid"}
)

func fakeGenerations(count int) []fakeGeneration { //nolint:gosec // decoy data
	out := make([]fakeGeneration, count)
	for i := range out {
		id := randomID()
		age := time.Duration(rand.Intn(90*24)) * time.Hour

		out[i] = fakeGeneration{
			ID:                id,
			UserID:            randomID(),
			Prompt:            subjects[rand.Intn(len(subjects))] + ", " + looks[rand.Intn(len(looks))],
			GeneratedImageURL: fmt.Sprintf("https://cdn.invalid/images/generated/%s.png", id),
			Resolution:        []string{"512", "1024"}[rand.Intn(2)],
			CreatedAt:         time.Now().Add(-age).UTC().Format(time.RFC3339),
		}
	}

	return out
}

func randomID() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		rand.Int31(),                //nolint:gosec
		rand.Int31()&0xffff,         //nolint:gosec
		rand.Int31()&0xffff,         //nolint:gosec
		rand.Int31()&0xffff,         //nolint:gosec
		rand.Int63()&0xffffffffffff) //nolint:gosec
}
