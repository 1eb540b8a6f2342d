package googleads

import (
	"sort"

	"adsmanager/internal/channels"
	"adsmanager/internal/convert"
)

// biddingStrategies sets the bidding field of a campaign for each supported
// strategy type. MAXIMIZE_CLICKS is served by the targetSpend field.
var biddingStrategies = map[string]func(c *campaign, cfg BiddingConfig){
	"MANUAL_CPC": func(c *campaign, _ BiddingConfig) {
		c.ManualCpc = &manualCpc{}
	},
	"MANUAL_CPM": func(c *campaign, _ BiddingConfig) {
		c.ManualCpm = &struct{}{}
	},
	"TARGET_SPEND": func(c *campaign, cfg BiddingConfig) {
		c.TargetSpend = &targetSpend{CpcBidCeilingMicros: convert.MinorToMicro(cfg.CpcBidCeilingAmount)}
	},
	"MAXIMIZE_CLICKS": func(c *campaign, cfg BiddingConfig) {
		c.TargetSpend = &targetSpend{CpcBidCeilingMicros: convert.MinorToMicro(cfg.CpcBidCeilingAmount)}
	},
	"TARGET_IMPRESSION_SHARE": func(c *campaign, cfg BiddingConfig) {
		c.TargetImpressionShare = &targetImpressionShare{
			Location:               "ANYWHERE_ON_PAGE",
			LocationFractionMicros: 1_000_000,
			CpcBidCeilingMicros:    convert.MinorToMicro(cfg.CpcBidCeilingAmount),
		}
	},
	"MAXIMIZE_CONVERSIONS": func(c *campaign, cfg BiddingConfig) {
		c.MaximizeConversions = &maximizeConversions{TargetCpaMicros: convert.MinorToMicro(cfg.TargetCpaAmount)}
	},
	"MAXIMIZE_CONVERSION_VALUE": func(c *campaign, cfg BiddingConfig) {
		c.MaximizeConversionValue = &maximizeConversionValue{TargetRoas: cfg.TargetRoas}
	},
	"TARGET_CPA": func(c *campaign, cfg BiddingConfig) {
		c.TargetCpa = &targetCpa{TargetCpaMicros: convert.MinorToMicro(cfg.TargetCpaAmount)}
	},
	"TARGET_ROAS": func(c *campaign, cfg BiddingConfig) {
		c.TargetRoas = &targetRoas{TargetRoas: cfg.TargetRoas}
	},
}

// applyBidding sets the bidding field for strategy on c. An empty strategy
// leaves c untouched.
func applyBidding(c *campaign, strategy string, cfg *BiddingConfig) error {
	if strategy == "" {
		return nil
	}
	set, ok := biddingStrategies[strategy]
	if !ok {
		return channels.InvalidInputf("bidding strategy %q is not supported (supported: %v)", strategy, supportedBiddingStrategies())
	}
	var params BiddingConfig
	if cfg != nil {
		params = *cfg
	}
	set(c, params)
	return nil
}

func supportedBiddingStrategies() []string {
	names := make([]string, 0, len(biddingStrategies))
	for name := range biddingStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
