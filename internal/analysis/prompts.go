package analysis

import "fmt"

// buildAnalysisPrompt is the full vehicle identification and damage
// assessment instruction. The prompt mandates an exact field list and
// forbids extra commentary to bias the model toward parseable output.
func buildAnalysisPrompt() string {
	return `You are an expert automotive appraiser with decades of experience identifying vehicles and assessing collision damage for insurance valuations.

Analyze the vehicle shown in this image.

INSTRUCTIONS:
1. Identify the vehicle: brand (manufacturer), model, approximate year or year range, body type, and color.
2. Inspect the visible bodywork for damage: scratches, dents, cracks, broken glass, paint damage, bumper damage, headlight damage, tire damage, rust, or missing/broken parts.
3. Estimate the vehicle's market value in its undamaged condition and its current condition, and note the main factors affecting the valuation.
4. Rate your confidence as "high", "medium", or "low".

OUTPUT FORMAT:
Respond with ONLY a JSON object in exactly this shape, with no surrounding commentary:

{
  "brand": "string",
  "model": "string",
  "year": "string",
  "body_type": "string",
  "color": "string",
  "confidence_level": "high|medium|low",
  "damage_detected": true,
  "damage_severity": "none|minor|moderate|severe",
  "estimated_value_undamaged": "string",
  "estimated_value_current": "string",
  "value_factors": "string",
  "damage_types": ["string"],
  "damage_description": "string",
  "condition_assessment": "string"
}

Do not add fields, explanations, or markdown outside the JSON object. If the image quality prevents a confident identification, still fill every field and lower the confidence_level.`
}

// buildValidationPrompt asks whether the image's main subject is a
// motor vehicle at all.
func buildValidationPrompt() string {
	return `Look at this image and decide whether its main subject is a motor vehicle (car, truck, van, SUV, motorcycle, or bus).

Respond with ONLY a JSON object in exactly this shape, with no surrounding commentary:

{
  "contains_vehicle": true,
  "vehicle_type": "string",
  "confidence": "high|medium|low",
  "reason": "string"
}

Set contains_vehicle to false if the image shows anything other than a motor vehicle as its main subject, and explain why in the reason field.`
}

// buildConsistencyPrompt asks whether this image shows the same
// vehicle as the one already analyzed in the session.
func buildConsistencyPrompt(brand, model, color string) string {
	return fmt.Sprintf(`You are comparing photos from a vehicle inspection. The first photo in this inspection was identified as a %s %s, color %s.

Look at this new image and identify the vehicle it shows, then decide whether it appears to be the same vehicle.

Respond with ONLY a JSON object in exactly this shape, with no surrounding commentary:

{
  "brand": "string",
  "model": "string",
  "color": "string",
  "matches_expected": true,
  "confidence": "high|medium|low",
  "reason": "string"
}

Set matches_expected to false only if the brand, model, or color clearly differ. Different angles, lighting, or partial views of the same vehicle are a match. Rate your confidence in that judgment as "high", "medium", or "low".`,
		brand, model, color)
}
