package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

func reportWindow(period string, now time.Time) (time.Time, time.Time, bool) {
	switch period {
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		return start, end, true
	case "week":
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		start := end.AddDate(0, 0, -6)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return start, end, true
	case "month":
		return now.AddDate(0, 0, -30).Truncate(24 * time.Hour), now.Add(24 * time.Hour), true
	}
	return time.Time{}, time.Time{}, false
}

type rewardReportSummary struct {
	TotalRewards   int
	TotalPaid      utils.Decimal
	TotalReferrers int
	TotalReferees  int
}

func summarizeRewards(rewards []models.RewardTransaction) rewardReportSummary {
	var summary rewardReportSummary
	referrerSet := make(map[string]bool)
	refereeSet := make(map[string]bool)
	for _, reward := range rewards {
		summary.TotalRewards++
		summary.TotalPaid = summary.TotalPaid.Add(reward.Amount)
		if reward.ReferralLevel != nil {
			referrerSet[reward.UserID] = true
		} else {
			refereeSet[reward.UserID] = true
		}
	}
	summary.TotalReferrers = len(referrerSet)
	summary.TotalReferees = len(refereeSet)
	return summary
}

// Admin: Download reward ledger as Excel
func DownloadRewardReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadRewardReportExcel called")

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := reportWindow(period, time.Now())
	if !ok {
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var rewards []models.RewardTransaction
	if err := config.DB.Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Order("created_at DESC").
		Find(&rewards).Error; err != nil {
		utils.LogError("Failed to fetch rewards: %v", err)
		utils.InternalServerError(c, "Failed to fetch rewards", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d rewards for Excel report", len(rewards))

	summary := summarizeRewards(rewards)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Reward Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("LUCKYMART - Referral Reward Report")
	titleRow = sheet.AddRow()
	titleRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Reference", "User ID", "Amount", "Reward Type", "Level", "Source Event", "Triggered By", "Date"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, reward := range rewards {
		row := sheet.AddRow()
		row.AddCell().SetString(reward.Reference)
		row.AddCell().SetString(reward.UserID)
		row.AddCell().SetString(reward.Amount.String())
		row.AddCell().SetString(reward.RewardType)
		if reward.ReferralLevel != nil {
			row.AddCell().SetInt(*reward.ReferralLevel)
		} else {
			row.AddCell().SetString("-")
		}
		row.AddCell().SetString(reward.SourceEventType)
		if reward.TriggerUserID != nil {
			row.AddCell().SetString(*reward.TriggerUserID)
		} else {
			row.AddCell().SetString("-")
		}
		row.AddCell().SetString(reward.CreatedAt.Format("2006-01-02 15:04"))
	}

	sheet.AddRow() // spacing

	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Rewards", fmt.Sprintf("%d", summary.TotalRewards)},
		{"Total Paid", summary.TotalPaid.String()},
		{"Distinct Referrers Paid", fmt.Sprintf("%d", summary.TotalReferrers)},
		{"Distinct Referees Paid", fmt.Sprintf("%d", summary.TotalReferees)},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=reward_report_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Successfully generated Excel report for period %s", period)
}

// Admin: Download reward ledger as PDF
func DownloadRewardReportPDF(c *gin.Context) {
	utils.LogInfo("DownloadRewardReportPDF called")

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := reportWindow(period, time.Now())
	if !ok {
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var rewards []models.RewardTransaction
	if err := config.DB.Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Order("created_at DESC").
		Find(&rewards).Error; err != nil {
		utils.LogError("Failed to fetch rewards: %v", err)
		utils.InternalServerError(c, "Failed to fetch rewards", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d rewards for PDF report", len(rewards))

	summary := summarizeRewards(rewards)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "LUCKYMART - Referral Reward Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Period: "+strings.ToUpper(period)+" | "+startDate.Format("2006-01-02")+" to "+endDate.Format("2006-01-02"))
	pdf.Ln(10)

	headers := []string{"Reference", "User ID", "Amount", "Reward Type", "Level", "Source Event", "Date"}
	colWidths := []float64{55, 52, 28, 45, 14, 28, 32}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(colWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	fill := false
	for _, reward := range rewards {
		pdf.SetFillColor(245, 245, 245)
		if fill {
			pdf.SetFillColor(230, 240, 255)
		}
		fill = !fill
		level := "-"
		if reward.ReferralLevel != nil {
			level = fmt.Sprintf("%d", *reward.ReferralLevel)
		}
		pdf.CellFormat(colWidths[0], 8, reward.Reference, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[1], 8, reward.UserID, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[2], 8, reward.Amount.String(), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[3], 8, reward.RewardType, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[4], 8, level, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[5], 8, reward.SourceEventType, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[6], 8, reward.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "C", fill, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(220, 230, 250)
	pdf.CellFormat(70, 10, "Summary", "1", 0, "C", true, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	pdf.SetFillColor(255, 255, 255)
	pdf.CellFormat(60, 8, "Total Rewards", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", summary.TotalRewards), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(60, 8, "Total Paid", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, summary.TotalPaid.String(), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(60, 8, "Distinct Referrers Paid", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", summary.TotalReferrers), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(60, 8, "Distinct Referees Paid", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", summary.TotalReferees), "1", 0, "R", false, 0, "")

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=reward_report_%s.pdf", period))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", err.Error())
		return
	}
	utils.LogInfo("Successfully generated PDF report for period %s", period)
}
