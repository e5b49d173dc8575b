package state

// Step identifies which input a pending admin operation is waiting for.
type Step int

const (
	// StepIdle indicates there is no active conversation with the actor.
	StepIdle Step = iota
	// StepAwaitPurchaserID waits for the numeric id of a key purchaser.
	StepAwaitPurchaserID
	// StepAwaitPurchaserName waits for the purchaser's display name;
	// the session carries the already-parsed purchaser id.
	StepAwaitPurchaserName
	// StepAwaitBanTarget waits for the numeric id of a user to ban.
	StepAwaitBanTarget
	// StepAwaitBackupLink waits for a backup channel link.
	StepAwaitBackupLink
	// StepAwaitPricingText waits for the pricing details text.
	StepAwaitPricingText
	// StepAwaitBroadcast waits for the broadcast message body.
	StepAwaitBroadcast
)

var stepNames = map[Step]string{
	StepIdle:               "idle",
	StepAwaitPurchaserID:   "await_purchaser_id",
	StepAwaitPurchaserName: "await_purchaser_name",
	StepAwaitBanTarget:     "await_ban_target",
	StepAwaitBackupLink:    "await_backup_link",
	StepAwaitPricingText:   "await_pricing_text",
	StepAwaitBroadcast:     "await_broadcast",
}

// String returns the step name used in logs.
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Session stores one pending operation together with its carried payload.
// Payload fields are meaningful only for the steps that set them.
type Session struct {
	Step Step
	// PurchaserID is populated when the flow advances from
	// StepAwaitPurchaserID to StepAwaitPurchaserName.
	PurchaserID int64
}
