package inference

import (
	"fmt"
	"strings"
)

const analysisInstructions = `QUANTUM SCANNER V8.0 - EXPERT MATHEMATICAL ANALYSIS.
Analyze this 1-minute chart using these EXACT formulas:

1. MOMENTUM CONTINUITY (CCT):
   Formula: P(Continuity) = Body Size / Total Range.
   If Body > 80% of (High-Low), probability is 65-70% for SAME COLOR.

2. REJECTION RATIO (R):
   Formula: R = Wick Length / Body Length.
   If R > 2.0 (Hammer/Shooting Star), reversal probability is 75%.

3. SVM GAP-FILLING:
   If Closing Price (C) is trending toward .000 or .500 round numbers and hasn't touched yet, predict GAP FILLING continuation.

4. SIGNAL CHECKLIST:
   - GREEN: Bullish Engulfing, Long Lower Wick, RSI(4) < 20.
   - RED: Bearish Engulfing, Long Upper Wick, RSI(4) > 80.

OUTPUT:
- Verdict: GREEN, RED, or WAIT.
- Confidence: Must be based on the calculated P or R.
- Reasoning: Show the math (e.g., "Body Ratio 85%, Rejection Ratio 0.5").

Return as JSON.`

// requestedSignals is how many one-minute signals the predictor is asked for.
const requestedSignals = 50

// BuildSignalPrompt renders the predictor instructions for the given local time and instruments.
func BuildSignalPrompt(localTime, zone string, symbols []string, minProbability float64) string {
	var sb strings.Builder
	sb.WriteString("QUANTUM PREDICTOR - HIGH ACCURACY MODE.\n")
	sb.WriteString(fmt.Sprintf("Current time (%s): %s.\n", zone, localTime))
	sb.WriteString(fmt.Sprintf("Assets: %s.\n\n", strings.Join(symbols, ", ")))
	sb.WriteString("STRICT GENERATION RULES:\n")
	sb.WriteString(fmt.Sprintf("1. ACCURACY THRESHOLD: If the calculated probability is BELOW %.0f%%, SKIP the signal immediately.\n", minProbability))
	sb.WriteString("2. TIME SPACING: There MUST be at least a 3-minute gap between signals for the same asset.\n")
	sb.WriteString(fmt.Sprintf("3. LIVE SYNC: Use the web search tool to verify current global market sentiment (volatility/news) to ensure >%.0f%% accuracy. If market volatility is too high (>80%% risk), skip that market.\n", minProbability))
	sb.WriteString("4. MATH: Apply CCT (Body > 80%) and Rejection Ratio (R > 2.0) logic for all predictions.\n\n")
	sb.WriteString(fmt.Sprintf("TASK: Generate %d signals for 1-min candles.\n", requestedSignals))
	sb.WriteString(fmt.Sprintf("- Return: Time (HH:mm, %s, 24-hour), Pair, Type (CALL/PUT), Accuracy (%%), and specific Logic.\n\n", zone))
	sb.WriteString(`Return strictly as JSON: {"signals": [ ... ]}.`)
	return sb.String()
}
