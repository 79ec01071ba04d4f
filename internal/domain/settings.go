package domain

// Keys of the settings records
const (
	SettingsStore         = "store"
	SettingsShipping      = "shipping"
	SettingsNotifications = "notifications"
)

// SettingsKeys lists every known settings key
var SettingsKeys = []string{SettingsStore, SettingsShipping, SettingsNotifications}

// StoreSettings holds the shop contact details
type StoreSettings struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone1      string `json:"phone1"`
	Phone2      string `json:"phone2"`
	Address     string `json:"address"`
	VatNumber   string `json:"vatNumber"`
	Description string `json:"description"`
}

// ShippingSettings holds shipping costs
type ShippingSettings struct {
	FreeShippingThreshold float64 `json:"freeShippingThreshold"`
	StandardShippingCost  float64 `json:"standardShippingCost"`
	ExpressShippingCost   float64 `json:"expressShippingCost"`
	EnableFreeShipping    bool    `json:"enableFreeShipping"`
}

// NotificationSettings toggles customer notifications
type NotificationSettings struct {
	OrderConfirmation bool `json:"orderConfirmation"`
	ShippingUpdates   bool `json:"shippingUpdates"`
	NewsletterEnabled bool `json:"newsletterEnabled"`
	SmsNotifications  bool `json:"smsNotifications"`
}

// DefaultStoreSettings is used until a store record is saved
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		Name:        "PROBAGNO",
		Email:       "info@probagno.gr",
		Phone1:      "210 6622215",
		Phone2:      "210 6622218",
		Address:     "2ο χλμ Λεωφόρος Κορωπίου-Βάρης, Κορωπί 194 00",
		VatNumber:   "094235821",
		Description: "Με συνεχή πορεία 50 ετών στο χώρο σχεδιασμού & κατασκευής επίπλων μπάνιου.",
	}
}

// DefaultShippingSettings is used until a shipping record is saved
func DefaultShippingSettings() ShippingSettings {
	return ShippingSettings{
		FreeShippingThreshold: 500,
		StandardShippingCost:  15,
		ExpressShippingCost:   30,
		EnableFreeShipping:    true,
	}
}

// DefaultNotificationSettings is used until a notifications record is saved
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		OrderConfirmation: true,
		ShippingUpdates:   true,
		NewsletterEnabled: true,
		SmsNotifications:  false,
	}
}

// ShippingCost returns the cost of standard or express shipping for an order subtotal
func (s ShippingSettings) ShippingCost(subtotal float64, express bool) float64 {
	if express {
		return s.ExpressShippingCost
	}
	if s.EnableFreeShipping && subtotal >= s.FreeShippingThreshold {
		return 0
	}
	return s.StandardShippingCost
}
