package imagegen

import "fmt"

// photography templates per category and style; %s is the user's description
var templates = map[Category]map[Style]string{
	CategoryPortrait: {
		StyleDramatic: `Create a professional dramatic portrait photograph: %s.
Lighting: Warm golden backlight (3200K) creating hair and shoulder rim lighting with a luminous halo.
Cool blue-green key light (5600K) at 45 degrees lighting the face softly with gentle shadows. Subtle fill light to reduce contrast.
Composition: Dark minimalist background, subject centered or on the rule of thirds. Expression: confident and serene.
Quality: Photorealistic, 8K, fashion magazine style, cinematic depth of field, saturated but natural colors.`,

		StyleNatural: `Professional natural portrait during golden hour: %s.
Environment: outdoor setting 30 minutes before sunset, warm and soft natural light.
Lighting: Side sunlight creating golden rim light on hair, discrete reflector on the face, soft natural shadows.
Composition: natural bokeh background, looking towards the horizon with a natural smile.
Style: Photorealistic, warm saturated colors, lifestyle magazine editorial style.`,

		StyleCinematic: `Cinematic portrait photograph: %s.
Lighting: Dramatic key lighting with strong directional shadows, rim lighting separating the subject from the background.
Color grading: Film-like palette with rich shadows and highlights.
Composition: Wide aspect ratio, dramatic framing, professional cinematography.
Quality: Movie poster quality, ultra-detailed, professional color grading, 8K resolution.`,
	},

	CategoryCouple: {
		StyleDramatic: `Professional cinematic couple portrait: %s.
Lighting: Golden backlight (3200K) creating a halo on both subjects, cold blue key light (5600K) at 45 degrees on the faces.
Poses: intimate embrace, connected gazes, natural emotional connection and spontaneous gestures.
Setting: Dark minimalist background, subtle smoke or light particles for atmosphere.
Result: Photorealistic, editorial quality, saturated but natural colors.`,

		StyleNatural: `Natural couple portrait during golden hour: %s.
Timing: 30 minutes before sunset, soft golden light surrounding the couple, long romantic shadows.
Composition: walking hand in hand or embracing while facing the horizon, partial silhouettes with backlight.
Atmosphere: Romantic and spontaneous, authentic emotions.
Result: Photorealistic, warm saturated colors, natural bokeh, romantic film feeling.`,
	},

	CategoryProfessional: {
		StyleLinkedIn: `Professional LinkedIn headshot: %s.
Setup: Neutral background (soft corporate blue, light gray or white), subject centered from the waist up.
Lighting: Soft uniform key light on the face, fill light removing under-eye shadows, no harsh shadows.
Expression: Natural confident smile, direct eye contact, upright professional posture.
Result: Photorealistic, high resolution, natural colors, polished but authentic.`,

		StyleExecutive: `Premium executive corporate photography: %s.
Environment: Modern office or studio with subtle corporate elements.
Lighting: Key light with slight drama, rim light separating from the background, controlled fill.
Composition: 3/4 or bust framing, confident pose, serious but approachable expression.
Output: Executive magazine quality, subtle natural retouching, conveying authority and competence.`,
	},
}

// BuildPrompt expands the description with the category/style template. Unknown
// combinations return the description unchanged.
func BuildPrompt(description string, category Category, style Style) string {
	styles, ok := templates[category]
	if !ok {
		return description
	}

	template, ok := styles[style]
	if !ok {
		return description
	}

	return fmt.Sprintf(template, description)
}

// cost reported for a generation at the given resolution
func CostFor(resolution string) float64 {
	if resolution == "1024x1024" {
		return CostHighRes
	}

	return CostStandard
}
