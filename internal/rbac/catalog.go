package rbac

import "github.com/vendora-hq/vendora/internal/models"

func init() {
	defs := []*ResourceDefinition{
		{
			Key:       PageKeyFromPath("/dashboard"),
			Type:      models.ResourceTypePage,
			Name:      "Dashboard",
			Path:      "/dashboard",
			SortOrder: 10,
		},
		{
			Key:         PageKeyFromPath("/vendors"),
			Type:        models.ResourceTypePage,
			Name:        "Vendors",
			Description: "Vendor directory and profiles",
			Path:        "/vendors",
			SortOrder:   20,
		},
		{
			Key:         PageKeyFromPath("/contracts"),
			Type:        models.ResourceTypePage,
			Name:        "Contracts",
			Description: "Contract records and lifecycle",
			Path:        "/contracts",
			SortOrder:   30,
		},
		{
			Key:         PageKeyFromPath("/documents"),
			Type:        models.ResourceTypePage,
			Name:        "Documents",
			Description: "Uploaded vendor and contract documents",
			Path:        "/documents",
			SortOrder:   40,
		},
		{
			Key:         PageKeyFromPath("/rate-cards"),
			Type:        models.ResourceTypePage,
			Name:        "Rate Cards",
			Description: "Vendor rate card management",
			Path:        "/rate-cards",
			SortOrder:   50,
		},
		{
			Key:         PageKeyFromPath("/reports"),
			Type:        models.ResourceTypePage,
			Name:        "Reports",
			Path:        "/reports",
			SortOrder:   60,
		},
		{
			Key:           PageKeyFromPath("/analytics"),
			Type:          models.ResourceTypePage,
			Name:          "Analytics",
			Description:   "Spend and contract analytics",
			Path:          "/analytics",
			SortOrder:     70,
			RequiredLevel: 2,
		},
		{
			Key:       PageKeyFromPath("/settings"),
			Type:      models.ResourceTypePage,
			Name:      "Settings",
			Path:      "/settings",
			SortOrder: 80,
		},
		{
			Key:           PageKeyFromPath("/settings/users"),
			Type:          models.ResourceTypePage,
			Name:          "User Management",
			ParentKey:     PageKeyFromPath("/settings"),
			Path:          "/settings/users",
			SortOrder:     81,
			RequiredLevel: 3,
		},
		{
			Key:           PageKeyFromPath("/settings/access-control"),
			Type:          models.ResourceTypePage,
			Name:          "Access Control",
			Description:   "Permission groups and resource grants",
			ParentKey:     PageKeyFromPath("/settings"),
			Path:          "/settings/access-control",
			SortOrder:     82,
			RequiredLevel: 3,
		},
		{
			Key:       PageKeyFromPath("/settings/configuration"),
			Type:      models.ResourceTypePage,
			Name:      "Configuration",
			ParentKey: PageKeyFromPath("/settings"),
			Path:      "/settings/configuration",
			SortOrder: 83,
		},
		{
			Key:         ComponentKey("vendor-documents"),
			Type:        models.ResourceTypeComponent,
			Name:        "Vendor Documents Panel",
			Description: "Document list embedded on the vendor detail page",
			SortOrder:   100,
		},
		{
			Key:         ComponentKey("contract-ai-summary"),
			Type:        models.ResourceTypeComponent,
			Name:        "Contract AI Summary",
			Description: "AI-generated contract clause summary widget",
			SortOrder:   110,
		},
		{
			Key:         ComponentKey("rate-card-editor"),
			Type:        models.ResourceTypeComponent,
			Name:        "Rate Card Editor",
			SortOrder:   120,
		},
		{
			Key:         ComponentKey("report-export"),
			Type:        models.ResourceTypeComponent,
			Name:        "Report Export",
			Description: "Export buttons on report pages",
			SortOrder:   130,
		},
	}

	for _, def := range defs {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
	if err := ValidateParents(); err != nil {
		panic(err)
	}
}
