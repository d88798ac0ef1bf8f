package llm

import "strings"

// ImageStyle is the fixed visual style requested for every prompt.
const ImageStyle = "hyperrealistic, cinematic lighting, epic, breathtaking, ultra-detailed, 8k"

// ComposeInstruction builds the instruction sent to Gemini for a user's idea.
// The idea is embedded verbatim; rejecting blank ideas is the caller's job.
func ComposeInstruction(idea string) string {
	var b strings.Builder
	b.WriteString("You are a world-class AI art prompt engineer specializing in marine biology.\n")
	b.WriteString("Based on the user's idea: '")
	b.WriteString(idea)
	b.WriteString("', generate a detailed, visually stunning English prompt for the Stable Diffusion model.\n")
	b.WriteString("Describe a unique sea creature, its form, texture, color, bioluminescence, and its environment (e.g., abyssal trench, vibrant coral reef).\n")
	b.WriteString("The final prompt should be a single, concise paragraph, rich with artistic keywords.\n")
	b.WriteString("Style should be: " + ImageStyle + ".\n")
	b.WriteString("Directly output the final English prompt without any introductory text.\n")
	return b.String()
}
