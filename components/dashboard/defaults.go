package dashboard

import "fmt"

// Category keys used by the default dataset.
const (
	CategoryStaff         = "staff"
	CategoryService       = "service"
	CategoryTechnology    = "technology"
	CategoryProducts      = "products"
	CategoryEnvironment   = "environment"
	CategoryMarketConduct = "market_conduct"
	CategoryOther         = "other"
)

var defaultCategories = []Category{
	{Key: CategoryStaff, Label: "พนักงาน", Subcategories: []Subcategory{
		{Key: "staff_courtesy", Label: "ความสุภาพ"},
		{Key: "staff_knowledge", Label: "ความรู้ในผลิตภัณฑ์"},
		{Key: "staff_speed", Label: "ความรวดเร็ว"},
		{Key: "staff_accuracy", Label: "ความถูกต้อง"},
	}},
	{Key: CategoryService, Label: "การบริการ", Subcategories: []Subcategory{
		{Key: "service_wait_time", Label: "ระยะเวลารอคอย"},
		{Key: "service_process", Label: "ขั้นตอนการให้บริการ"},
		{Key: "service_document", Label: "เอกสาร"},
	}},
	{Key: CategoryTechnology, Label: "เทคโนโลยี", Subcategories: []Subcategory{
		{Key: "tech_mobile_app", Label: "แอปพลิเคชัน"},
		{Key: "tech_atm", Label: "ตู้ ATM"},
		{Key: "tech_queue_system", Label: "ระบบบัตรคิว"},
	}},
	{Key: CategoryProducts, Label: "ผลิตภัณฑ์", Subcategories: []Subcategory{
		{Key: "products_loan", Label: "สินเชื่อ"},
		{Key: "products_deposit", Label: "เงินฝาก"},
		{Key: "products_fee", Label: "ค่าธรรมเนียม"},
	}},
	{Key: CategoryEnvironment, Label: "สภาพแวดล้อม", Subcategories: []Subcategory{
		{Key: "env_parking", Label: "ที่จอดรถ"},
		{Key: "env_cleanliness", Label: "ความสะอาด"},
		{Key: "env_seating", Label: "ที่นั่งรอ"},
	}},
	{Key: CategoryMarketConduct, Label: "การปฏิบัติตามหลักตลาด", Subcategories: []Subcategory{
		{Key: "conduct_disclosure", Label: "การเปิดเผยข้อมูล"},
		{Key: "conduct_pressure_sale", Label: "การขายโดยกดดัน"},
	}},
	{Key: CategoryOther, Label: "อื่นๆ"},
}

var defaultServiceTypes = []string{"deposit", "withdrawal", "loan", "account_opening", "bill_payment", "consultation"}

var defaultDimensions = []string{"overall", "speed", "staff", "facility"}

// DefaultDataset returns the built-in reference tables: four regions with three
// districts each and three branches per district.
func DefaultDataset() *DatasetDocument {
	doc := &DatasetDocument{
		Version:      DatasetVersion,
		Name:         "default",
		Categories:   append([]Category(nil), defaultCategories...),
		ServiceTypes: append([]string(nil), defaultServiceTypes...),
		Dimensions:   append([]string(nil), defaultDimensions...),
		Ordering:     orderingBusiness,
	}
	for r := 1; r <= 4; r++ {
		region := RegionSpec{ID: fmt.Sprintf("ภาค %d", r), Label: fmt.Sprintf("ภาค %d", r), Order: r}
		for d := 1; d <= 3; d++ {
			districtID := fmt.Sprintf("เขต %d.%d", r, d)
			district := DistrictSpec{ID: districtID, Label: districtID, Order: d}
			for b := 1; b <= 3; b++ {
				district.Branches = append(district.Branches, BranchSpec{
					ID:    fmt.Sprintf("BR-%d%d%d", r, d, b),
					Label: fmt.Sprintf("สาขา %d.%d.%d", r, d, b),
					Order: b,
				})
			}
			region.Districts = append(region.Districts, district)
		}
		doc.Regions = append(doc.Regions, region)
	}
	return doc
}

// DefaultServiceTypes lists the built-in service types.
func DefaultServiceTypes() []string {
	return append([]string(nil), defaultServiceTypes...)
}

// DefaultDimensions lists the built-in satisfaction dimensions.
func DefaultDimensions() []string {
	return append([]string(nil), defaultDimensions...)
}
