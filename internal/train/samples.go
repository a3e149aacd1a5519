package train

import "github.com/cube-dp/lease-classifier/constants"

// Sample is one labeled training clause.
type Sample struct {
	Text  string
	Label constants.Category
}

// SampleClauses returns the built-in labeled corpus used when no training
// data directory is configured: eight clauses per category.
func SampleClauses() []Sample {
	return []Sample{
		// rent payment
		{"The monthly rent shall be $1,500, due on the first day of each month.", constants.RentPayment},
		{"Tenant agrees to pay rent in the amount of $2,000 per month.", constants.RentPayment},
		{"Rent payments must be received by the 5th of each month to avoid late fees.", constants.RentPayment},
		{"The base rent for the premises is $1,800 monthly, payable in advance.", constants.RentPayment},
		{"Tenant shall pay landlord the sum of $1,200 on the first day of each calendar month.", constants.RentPayment},
		{"Late payment of rent will incur a fee of 5% of the monthly rent amount.", constants.RentPayment},
		{"Rent may be paid by check, money order, or electronic transfer.", constants.RentPayment},
		{"Annual rent increases shall not exceed 3% of the current rent.", constants.RentPayment},

		// security deposit
		{"A security deposit of $3,000 is required prior to move-in.", constants.SecurityDeposit},
		{"The security deposit shall be returned within 30 days of lease termination.", constants.SecurityDeposit},
		{"Landlord may deduct from security deposit for unpaid rent or damages beyond normal wear.", constants.SecurityDeposit},
		{"Tenant shall pay a refundable security deposit equal to one month's rent.", constants.SecurityDeposit},
		{"The deposit will be held in a separate escrow account as required by law.", constants.SecurityDeposit},
		{"Security deposit refunds will include an itemized statement of deductions.", constants.SecurityDeposit},
		{"No interest shall be paid on the security deposit during the lease term.", constants.SecurityDeposit},
		{"The security deposit cannot be applied as last month's rent without written consent.", constants.SecurityDeposit},

		// maintenance
		{"Tenant is responsible for routine maintenance and minor repairs under $100.", constants.Maintenance},
		{"Landlord shall maintain all major systems including HVAC, plumbing, and electrical.", constants.Maintenance},
		{"Tenant must report any maintenance issues within 48 hours of discovery.", constants.Maintenance},
		{"The landlord will provide regular pest control services at no additional cost.", constants.Maintenance},
		{"Tenant agrees to keep the premises in clean and sanitary condition.", constants.Maintenance},
		{"All repairs must be performed by licensed contractors approved by landlord.", constants.Maintenance},
		{"Landlord shall respond to emergency maintenance requests within 24 hours.", constants.Maintenance},
		{"Tenant is responsible for lawn care and snow removal on the premises.", constants.Maintenance},

		// termination
		{"Either party may terminate this lease with 60 days written notice.", constants.Termination},
		{"Early termination requires payment of two months rent as penalty.", constants.Termination},
		{"This lease shall terminate automatically at the end of the term.", constants.Termination},
		{"Tenant may terminate early due to military deployment with proper documentation.", constants.Termination},
		{"Upon termination, tenant must return all keys and access devices.", constants.Termination},
		{"Lease termination notice must be sent via certified mail.", constants.Termination},
		{"The landlord may terminate the lease for material breach after proper notice.", constants.Termination},
		{"Month-to-month tenancy requires 30 days notice to terminate.", constants.Termination},

		// utilities
		{"Tenant is responsible for all utilities including gas, electric, and water.", constants.Utilities},
		{"Landlord pays for water and trash removal; tenant pays electric and gas.", constants.Utilities},
		{"All utility accounts must be transferred to tenant's name before move-in.", constants.Utilities},
		{"Internet and cable services are the sole responsibility of the tenant.", constants.Utilities},
		{"Common area utilities are included in the monthly rent.", constants.Utilities},
		{"Tenant shall not exceed normal utility usage for residential purposes.", constants.Utilities},
		{"Utility deposits required by service providers are tenant's responsibility.", constants.Utilities},
		{"Landlord provides heating; tenant is responsible for air conditioning costs.", constants.Utilities},

		// pets
		{"No pets are allowed on the premises without prior written consent.", constants.Pets},
		{"A non-refundable pet deposit of $500 is required for each approved pet.", constants.Pets},
		{"Dogs over 50 pounds are not permitted in this property.", constants.Pets},
		{"Tenant must provide proof of pet vaccination and liability insurance.", constants.Pets},
		{"Service animals are permitted as required by law without additional deposit.", constants.Pets},
		{"Pet owners are liable for all damages caused by their animals.", constants.Pets},
		{"Maximum of two pets allowed with landlord approval.", constants.Pets},
		{"Exotic animals and dangerous breeds are strictly prohibited.", constants.Pets},

		// subletting
		{"Tenant may not sublet the premises without prior written consent from landlord.", constants.Subletting},
		{"Any sublease must be approved in writing and does not release tenant from obligations.", constants.Subletting},
		{"Subletting for periods longer than 30 days requires a formal agreement.", constants.Subletting},
		{"Tenant remains fully responsible for subtenant actions and rent payment.", constants.Subletting},
		{"Assignment of this lease requires landlord approval and may incur a transfer fee.", constants.Subletting},
		{"Short-term rentals such as Airbnb are expressly prohibited.", constants.Subletting},
		{"Landlord shall not unreasonably withhold consent to sublease requests.", constants.Subletting},
		{"Subletting is permitted only to immediate family members.", constants.Subletting},

		// insurance
		{"Tenant must maintain renter's insurance with minimum coverage of $100,000.", constants.Insurance},
		{"Proof of insurance must be provided to landlord before move-in.", constants.Insurance},
		{"Landlord's insurance does not cover tenant's personal property.", constants.Insurance},
		{"Tenant's insurance policy must name landlord as additional insured.", constants.Insurance},
		{"Failure to maintain required insurance is grounds for lease termination.", constants.Insurance},
		{"Tenant is responsible for any insurance deductibles for claims arising from their actions.", constants.Insurance},
		{"Renter's insurance must include liability coverage for guest injuries.", constants.Insurance},
		{"Insurance policies must remain active throughout the entire lease term.", constants.Insurance},

		// default
		{"Failure to pay rent within 10 days constitutes default under this lease.", constants.Default},
		{"Upon default, landlord may pursue all legal remedies including eviction.", constants.Default},
		{"Tenant shall have 30 days to cure any non-monetary default after written notice.", constants.Default},
		{"Repeated violations of lease terms constitute grounds for immediate termination.", constants.Default},
		{"In case of default, tenant shall be liable for landlord's attorney fees.", constants.Default},
		{"Material breach of any lease provision may result in forfeiture of security deposit.", constants.Default},
		{"Landlord may accelerate all remaining rent due upon tenant default.", constants.Default},
		{"Default includes unauthorized occupants, illegal activities, or nuisance behavior.", constants.Default},

		// other
		{"This lease shall be governed by the laws of the State of California.", constants.Other},
		{"All notices must be in writing and delivered to the addresses specified herein.", constants.Other},
		{"This agreement constitutes the entire understanding between the parties.", constants.Other},
		{"Modifications to this lease must be in writing and signed by both parties.", constants.Other},
		{"Tenant acknowledges receipt of lead-based paint disclosure.", constants.Other},
		{"The premises shall be used exclusively for residential purposes.", constants.Other},
		{"Landlord reserves the right to enter with 24-hour notice for inspections.", constants.Other},
		{"Smoking is prohibited in all indoor areas of the premises.", constants.Other},
	}
}

// Split returns parallel text and label slices for classifier training.
func Split(samples []Sample) ([]string, []constants.Category) {
	texts := make([]string, len(samples))
	labels := make([]constants.Category, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
		labels[i] = s.Label
	}
	return texts, labels
}
