package style

import (
	"github.com/fatih/color"

	"github.com/c9s/pythia/pkg/indicator/envelope"
)

const GreenColor = "#228B22"
const RedColor = "#DC143C"
const GrayColor = "#808080"

var BuyEmoji = "🟢"
var SellEmoji = "🔴"

var (
	buyText  = color.New(color.FgGreen, color.Bold).SprintFunc()
	sellText = color.New(color.FgRed, color.Bold).SprintFunc()
)

// SignalColor returns the attachment color of a signal kind.
func SignalColor(kind envelope.SignalKind) string {
	switch kind {
	case envelope.SignalBuy:
		return GreenColor
	case envelope.SignalSell:
		return RedColor
	}
	return GrayColor
}

func SignalEmoji(kind envelope.SignalKind) string {
	switch kind {
	case envelope.SignalBuy:
		return BuyEmoji
	case envelope.SignalSell:
		return SellEmoji
	}
	return ""
}

// SignalText colors the signal for terminal output.
func SignalText(kind envelope.SignalKind) string {
	switch kind {
	case envelope.SignalBuy:
		return buyText(kind.String())
	case envelope.SignalSell:
		return sellText(kind.String())
	}
	return "-"
}
