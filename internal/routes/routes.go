package routes

const (
	// Health
	Health = "/health"

	// Auth
	AuthRegister     = "/api/register"
	AuthLogin        = "/api/login"
	AuthLogout       = "/api/logout"
	AuthProfile      = "/api/profile"
	AuthProfileImage = "/api/profile/image"
	AuthVerifyCode   = "/api/verify-code"
	AuthResendCode   = "/api/resend-code"

	// Appointments
	Appointments            = "/api/appointments"
	AppointmentsAvailable   = "/api/appointments/available-slots"
	AppointmentsConfirmSMS  = "/api/appointments/confirm-sms"
	AppointmentsConfirmLink = "/api/appointments/confirm/{id}/{code}"
	AppointmentsSMSWebhook  = "/api/appointments/webhook/sms"
	AppointmentsPurge       = "/api/appointments/purge"
	AppointmentByID         = "/api/appointments/{id}"
	AppointmentConfirm      = "/api/appointments/{id}/confirm"
	AppointmentComplete     = "/api/appointments/{id}/complete"
	AppointmentCancel       = "/api/appointments/{id}/cancel"
	AppointmentAssign       = "/api/appointments/{id}/assign"
	MyAppointments          = "/api/my-appointments"

	// Properties
	PropertiesPublic     = "/api/properties/public"
	PropertyPublicByID   = "/api/properties/public/{id}"
	Properties           = "/api/properties"
	PropertiesMine       = "/api/properties/my-properties"
	PropertyByID         = "/api/properties/{id}"
	PropertyImages       = "/api/properties/{id}/images"
	PropertyImageByID    = "/api/properties/{id}/images/{imageId}"
	PropertyImageMain    = "/api/properties/{id}/images/{imageId}/main"
	PropertyStatus       = "/api/properties/{id}/status"
	PropertyHistory      = "/api/properties/{id}/history"
	PropertyDocuments    = "/api/properties/{id}/documents"
	PropertyDocumentByID = "/api/properties/{id}/documents/{docId}"

	// Offers
	Offers               = "/api/offers"
	OffersMine           = "/api/offers/my-offers"
	OfferMineByID        = "/api/offers/my-offers/{id}"
	OfferMineMessages    = "/api/offers/my-offers/{id}/messages"
	OffersPending        = "/api/offers/pending"
	OffersAssigned       = "/api/offers/assigned"
	OfferAssignedByID    = "/api/offers/assigned/{id}"
	OfferAssignedMessage = "/api/offers/assigned/{id}/messages"
	OfferTake            = "/api/offers/{id}/take"
	OfferStatus          = "/api/offers/{id}/status"
	OfferRead            = "/api/offers/{id}/read"
	OffersAll            = "/api/offers/all"

	// Reviews
	PropertyReviews = "/api/properties/{propertyId}/reviews"
	Reviews         = "/api/reviews"
	ReviewsPending  = "/api/reviews/pending"
	ReviewByID      = "/api/reviews/{id}"
	ReviewModerate  = "/api/reviews/{id}/moderate"
	ReviewFeatured  = "/api/reviews/{id}/featured"
	ReviewHelpful   = "/api/reviews/{id}/helpful"

	// Notification broadcasts
	NotificationsStats   = "/api/notifications/stats"
	NotificationsHistory = "/api/notifications/history"
	NotificationByID     = "/api/notifications/{id}"
	NotificationResend   = "/api/notifications/{id}/resend"
	NotificationPreview  = "/api/notifications/preview"
	NotificationSend     = "/api/notifications/send"

	// User administration
	Users    = "/api/users"
	UserByID = "/api/users/{id}"
	UserRole = "/api/users/{id}/role"
	Roles    = "/api/roles"
)
