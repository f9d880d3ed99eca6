package synth

import (
	"fmt"

	"github.com/ppiankov/claimaudit/internal/model"
)

var claimTemplates = map[model.Category][]string{
	model.CategoryEnvironmental: {
		"Our company reduced carbon emissions by {percentage}% in {year} compared to {baseline_year} baseline.",
		"We achieved a {percentage}% increase in renewable energy usage across all facilities.",
		"Our water consumption decreased by {percentage}% through efficiency improvements.",
		"We diverted {percentage}% of waste from landfills through recycling programs.",
		"Our supply chain carbon footprint was reduced by {percentage}% in {year}.",
		"We planted {number} trees as part of our reforestation initiative.",
		"Our facilities achieved {percentage}% reduction in energy consumption per unit produced.",
		"We eliminated {percentage}% of single-use plastics from our operations.",
	},
	model.CategoryAcademic: {
		"Our research team published {number} peer-reviewed papers in top-tier journals in {year}.",
		"We received ${amount} million in research grants from federal agencies.",
		"Our faculty achieved a {percentage}% increase in citation impact factor.",
		"We graduated {number} PhD students with a {percentage}% job placement rate.",
		"Our research collaboration network expanded to {number} international institutions.",
		"We filed {number} patents based on our research discoveries in {year}.",
		"Our academic programs achieved {percentage}% student satisfaction rating.",
		"We established {number} new research centers focused on emerging technologies.",
	},
	model.CategoryFinancial: {
		"Revenue increased by {percentage}% year-over-year, reaching ${amount} billion in {year}.",
		"Our profit margin improved to {percentage}% in {year}.",
		"We achieved ${amount} million in cost savings through operational efficiency.",
		"Our market share grew by {percentage} percentage points in the {sector} sector.",
		"We reduced operational expenses by {percentage}% while maintaining service quality.",
		"Our return on investment reached {percentage}% for key strategic initiatives.",
		"We generated ${amount} million in new revenue from digital transformation.",
		"Our debt-to-equity ratio improved to {ratio}:1 by the end of {year}.",
	},
	model.CategoryPolicy: {
		"We maintain full compliance with all {regulation} requirements across {region} operations.",
		"Our data privacy program covers {percentage}% of customer interactions.",
		"We implemented {number} new security protocols to meet regulatory standards.",
		"Our compliance audit achieved a {percentage}% pass rate across all jurisdictions.",
		"We reduced regulatory violations by {percentage}% compared to the previous year.",
		"Our ethics training program reached {percentage}% of all employees.",
		"We established {number} new partnerships with regulatory bodies.",
		"Our risk management framework covers {percentage}% of operational processes.",
	},
}

var evidenceSources = map[model.Category][]model.Source{
	model.CategoryEnvironmental: {
		{Name: "EPA FLIGHT Database", URL: "https://ghgdata.epa.gov/ghgp/main.do"},
		{Name: "Energy Information Administration", URL: "https://www.eia.gov/totalenergy/data/monthly/"},
		{Name: "CDP Climate Change Report", URL: "https://www.cdp.net/"},
		{Name: "Global Reporting Initiative", URL: "https://www.globalreporting.org/"},
		{Name: "SASB Standards", URL: "https://www.sasb.org/"},
		{Name: "UN Global Compact", URL: "https://www.unglobalcompact.org/"},
	},
	model.CategoryAcademic: {
		{Name: "PubMed/MEDLINE", URL: "https://pubmed.ncbi.nlm.nih.gov/"},
		{Name: "Web of Science", URL: "https://webofscience.com/"},
		{Name: "Google Scholar", URL: "https://scholar.google.com/"},
		{Name: "Scopus Database", URL: "https://www.scopus.com/"},
		{Name: "NSF Award Database", URL: "https://www.nsf.gov/awardsearch/"},
		{Name: "NIH Reporter", URL: "https://reporter.nih.gov/"},
	},
	model.CategoryFinancial: {
		{Name: "SEC EDGAR Database", URL: "https://www.sec.gov/edgar.shtml"},
		{Name: "Bloomberg Terminal", URL: "https://www.bloomberg.com/professional/solution/bloomberg-terminal/"},
		{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/"},
		{Name: "Morningstar Direct", URL: "https://www.morningstar.com/products/direct"},
		{Name: "S&P Capital IQ", URL: "https://www.spglobal.com/marketintelligence/"},
		{Name: "FactSet", URL: "https://www.factset.com/"},
	},
	model.CategoryPolicy: {
		{Name: "Federal Register", URL: "https://www.federalregister.gov/"},
		{Name: "European Data Protection Board", URL: "https://edpb.europa.eu/"},
		{Name: "OSHA Compliance Database", URL: "https://www.osha.gov/"},
		{Name: "FTC Enforcement Actions", URL: "https://www.ftc.gov/"},
		{Name: "ISO Standards Database", URL: "https://www.iso.org/"},
		{Name: "NIST Cybersecurity Framework", URL: "https://www.nist.gov/cyberframework"},
	},
}

var explanationTemplates = map[model.Consistency][]string{
	model.ConsistencySupported: {
		"This claim is well-supported by {source} data showing {evidence_detail}.",
		"Multiple independent sources confirm this claim, including {source} which reports {evidence_detail}.",
		"The claim is substantiated by official {source} records indicating {evidence_detail}.",
		"Strong evidence from {source} validates this claim with {evidence_detail}.",
	},
	model.ConsistencyContradicted: {
		"This claim is contradicted by {source} data which shows {evidence_detail}, significantly different from the claimed figures.",
		"Official {source} records contradict this claim, reporting {evidence_detail} instead.",
		"Multiple sources including {source} provide conflicting evidence showing {evidence_detail}.",
		"The claim is disputed by {source} data indicating {evidence_detail}, which contradicts the stated information.",
	},
	model.ConsistencyUnverifiable: {
		"This claim cannot be verified as {source} does not contain sufficient public information to confirm {evidence_detail}.",
		"No reliable public sources including {source} provide adequate data to verify {evidence_detail}.",
		"The claim lacks verifiable evidence from standard sources like {source} for {evidence_detail}.",
		"Insufficient public documentation exists to verify this claim through {source} or similar databases.",
	},
	model.ConsistencyUnsupported: {
		"While no direct contradictions were found, there is insufficient evidence from {source} to fully support {evidence_detail}.",
		"The claim lacks adequate supporting evidence, with {source} providing only limited data on {evidence_detail}.",
		"Current evidence from {source} is insufficient to substantiate the claim regarding {evidence_detail}.",
		"The claim requires stronger evidence, as {source} data provides incomplete information about {evidence_detail}.",
	},
}

var (
	sectors     = []string{"technology", "healthcare", "manufacturing", "retail"}
	regions     = []string{"European", "North American", "global"}
	regulations = []string{"GDPR", "SOX", "HIPAA", "ISO 27001"}
)

// fallbackSource names the explanation source when a claim has no evidence
const fallbackSource = "public databases"

// ClaimTemplates returns a copy of the claim templates for a category.
// It panics on an unknown category.
func ClaimTemplates(c model.Category) []string {
	return append([]string(nil), mustCategory(claimTemplates, c)...)
}

// Sources returns a copy of the evidence source table for a category.
// It panics on an unknown category.
func Sources(c model.Category) []model.Source {
	return append([]model.Source(nil), mustCategory(evidenceSources, c)...)
}

// SourceURL returns the URL bound to a source name within a category
func SourceURL(c model.Category, name string) (string, bool) {
	for _, s := range evidenceSources[c] {
		if s.Name == name {
			return s.URL, true
		}
	}
	return "", false
}

// ExplanationTemplates returns a copy of the explanation templates for a verdict.
// It panics on an unknown verdict.
func ExplanationTemplates(c model.Consistency) []string {
	t, ok := explanationTemplates[c]
	if !ok {
		panic(fmt.Sprintf("synth: unknown consistency %q", string(c)))
	}
	return append([]string(nil), t...)
}

func mustCategory[T any](table map[model.Category][]T, c model.Category) []T {
	v, ok := table[c]
	if !ok {
		panic(fmt.Sprintf("synth: unknown category %q", string(c)))
	}
	return v
}
