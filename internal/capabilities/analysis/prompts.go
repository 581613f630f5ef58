// internal/capabilities/analysis/prompts.go
package analysis

import "fmt"

var analysisPrompts = map[string]string{
	TypeGeneral: `Analyze this agricultural image. Describe what is shown, assess the overall condition of any crops or produce, and note anything a farmer or buyer should know. Include a health status, a quality score out of 100, and the growth stage if determinable.`,

	TypeHealth: `Assess the health of the crops in this image. Report a health status (excellent/good/fair/poor/critical), identify any visible disease, pest, or nutrient problems, state the growth stage, and list concrete treatment recommendations as numbered steps.`,

	TypeQuality: `Evaluate the market quality of the produce in this image. Give a quality score out of 100 and a letter grade (A-F), describe visible defects or damage, and recommend handling or sorting steps as a numbered list.`,

	TypePest: `Inspect this crop image for pest and disease pressure. Identify any pests, insects, or disease symptoms visible, estimate severity, and provide numbered control recommendations suitable for a smallholder farm.`,
}

const cropIdentificationPrompt = `Identify the primary crop or produce in this image. Answer with just the crop name and variety if visible, in a few words.`

func marketResearchPrompt(crop, region string) string {
	if region == "" {
		region = "West Africa"
	}
	return fmt.Sprintf(`Provide current market intelligence for %s in %s:
1. Current wholesale and retail price ranges
2. Supply and demand conditions
3. Quality standards buyers expect
4. Near-term price outlook

Present the key findings as a numbered list with concrete figures where available.`, crop, region)
}
