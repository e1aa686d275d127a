package dialogue

// Step identifies where a call is in the conversation. The wire value is
// stored in the session, so renaming a constant is a breaking change for
// in-flight calls.
type Step string

const (
	StepGreeting Step = "greeting"

	// Identity and contact.
	StepCollectName          Step = "collect_name"
	StepConfirmName          Step = "confirm_name"
	StepCollectPhone         Step = "collect_phone"
	StepConfirmCallingNumber Step = "confirm_calling_number"
	StepConfirmTransfer      Step = "confirm_transfer_request"

	// Email capture is skipped in the current flow but the steps stay
	// routable so stale sessions keep working.
	StepCollectEmail     Step = "collect_email"
	StepCollectEmailCase Step = "collect_email_case"

	// Itinerary.
	StepCollectMoveType       Step = "collect_move_type"
	StepCollectPropertyType   Step = "collect_property_type"
	StepCollectPickupType     Step = "collect_pickup_type"
	StepCollectPickupAddress  Step = "collect_pickup_address"
	StepConfirmPickupAddress  Step = "confirm_pickup_address"
	StepCollectPickupRooms    Step = "collect_pickup_rooms"
	StepConfirmPickupRooms    Step = "confirm_pickup_rooms"
	StepCollectPickupStairs   Step = "collect_pickup_stairs"
	StepCollectDropoffType    Step = "collect_dropoff_type"
	StepCollectDropoffAddress Step = "collect_dropoff_address"
	StepConfirmDropoffAddress Step = "confirm_dropoff_address"
	StepCollectDropoffRooms   Step = "collect_dropoff_rooms"
	StepConfirmDropoffRooms   Step = "confirm_dropoff_rooms"
	StepCollectDropoffStairs  Step = "collect_dropoff_stairs"

	// Scheduling.
	StepCollectDate          Step = "collect_date"
	StepCollectTime          Step = "collect_time"
	StepConfirmTime          Step = "confirm_time"
	StepSelectAlternative    Step = "handle_alternative_selection"

	// Add-ons and estimate.
	StepCollectPacking             Step = "collect_packing"
	StepCollectSpecialItems        Step = "collect_special_items"
	StepCollectSpecialInstructions Step = "collect_special_instructions"
	StepAskProcessExplanation      Step = "ask_process_explanation"
	StepExplainProcess             Step = "explain_process"
	StepProvideEstimate            Step = "provide_estimate"
	StepConfirmBooking             Step = "confirm_booking"

	// Escalation branches.
	StepDiscountOffer   Step = "handle_discount_offer"
	StepInHouseEstimate Step = "handle_inhouse_estimate"

	// Post-confirmation finalization.
	StepCollectFinalPickupAddress  Step = "collect_final_pickup_address"
	StepConfirmFinalPickupAddress  Step = "confirm_final_pickup_address"
	StepCollectFinalDropoffAddress Step = "collect_final_dropoff_address"
	StepConfirmFinalDropoffAddress Step = "confirm_final_dropoff_address"
	StepConfirmSMSReceived         Step = "confirm_sms_received"
	StepConfirmPhoneForSMS         Step = "confirm_phone_for_sms"
	StepCollectPhoneForSMS         Step = "collect_phone_for_sms"
)

// digitPreferringSteps take DTMF over speech when both arrive on a turn.
var digitPreferringSteps = map[Step]bool{
	StepCollectPhone:          true,
	StepCollectPickupAddress:  true,
	StepCollectDropoffAddress: true,
	StepCollectPhoneForSMS:    true,
}
